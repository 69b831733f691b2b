// Command ingest merges knowledge datasets, cleans them, and optionally
// embeds and uploads them into the configured vector store. It is the offline
// counterpart of the population that happens on first startup.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
	"github.com/fatih/color"

	"github.com/chatdawah/rag-chatbot/internal/chatbot"
	"github.com/chatdawah/rag-chatbot/internal/config"
	"github.com/chatdawah/rag-chatbot/internal/embed"
	"github.com/chatdawah/rag-chatbot/internal/vector"
)

const uploadBatchSize = 100

func main() {
	outFlag := flag.String("out", "", "write the merged dataset to this file")
	uploadFlag := flag.Bool("upload", false, "embed and upload the merged dataset into the vector store")
	recreateFlag := flag.Bool("recreate", false, "drop the collection before uploading")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("usage: ingest [flags] data.json [data_new.json ...]")
	}

	var all []chatbot.KnowledgeItem
	for _, f := range files {
		items, err := chatbot.LoadKnowledge(f)
		if err != nil {
			log.Fatalf("load %s: %v", f, err)
		}
		normalizeItems(items, filepath.Base(f))
		color.Cyan("loaded %d items from %s", len(items), f)
		all = append(all, items...)
	}

	merged, dups := mergeItems(all)
	for i := range merged {
		merged[i].Output = cleanOutput(merged[i].Output)
		tagLanguage(&merged[i])
	}
	color.Green("merged %d items (%d duplicates removed)", len(merged), dups)

	if *outFlag != "" {
		if err := writeDataset(*outFlag, merged); err != nil {
			log.Fatalf("write %s: %v", *outFlag, err)
		}
		color.Green("wrote merged dataset to %s", *outFlag)
	}

	if *uploadFlag {
		if err := upload(context.Background(), config.Load(), merged, *recreateFlag); err != nil {
			log.Fatalf("upload failed: %v", err)
		}
		color.Green("uploaded %d items", len(merged))
	}
}

// normalizeItems tags each item with the file it came from unless the record
// already names a source.
func normalizeItems(items []chatbot.KnowledgeItem, source string) {
	for i := range items {
		if items[i].Source == "" {
			items[i].Source = source
		}
	}
}

// mergeItems drops records without an instruction and de-duplicates by
// case-folded trimmed instruction; the first occurrence wins and input order
// is preserved.
func mergeItems(items []chatbot.KnowledgeItem) ([]chatbot.KnowledgeItem, int) {
	seen := make(map[string]bool, len(items))
	merged := make([]chatbot.KnowledgeItem, 0, len(items))
	dups := 0

	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Instruction))
		if key == "" {
			continue
		}
		if seen[key] {
			dups++
			continue
		}
		seen[key] = true
		merged = append(merged, item)
	}
	return merged, dups
}

var (
	citationRe = regexp.MustCompile(`\[cite:\s*[\d,\s\-]+\]`)
	spaceRe    = regexp.MustCompile(`\s+`)
	punctRe    = regexp.MustCompile(`\s+([.,;:!?])`)
)

// cleanOutput strips "[cite: ...]" markers left over from document
// conversion and normalizes the whitespace around them.
func cleanOutput(s string) string {
	s = citationRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

func tagLanguage(item *chatbot.KnowledgeItem) {
	if item.Lang != "" {
		return
	}
	info := whatlanggo.Detect(item.Instruction + " " + item.Output)
	if info.IsReliable() {
		item.Lang = whatlanggo.LangToString(info.Lang)
	}
}

func writeDataset(path string, items []chatbot.KnowledgeItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func upload(ctx context.Context, cfg *config.Config, items []chatbot.KnowledgeItem, recreate bool) error {
	embedder, err := embed.New(ctx, cfg)
	if err != nil {
		return err
	}
	store, err := vector.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if recreate {
		if err := store.Drop(ctx); err != nil {
			return err
		}
		color.Yellow("dropped collection %s", cfg.CollectionName)
	}

	sample, err := embedder.Embed(ctx, []string{"test"})
	if err != nil {
		return fmt.Errorf("probe embedding dimension: %w", err)
	}
	dim := len(sample[0])

	created, err := store.EnsureCollection(ctx, dim)
	if err != nil {
		return err
	}
	if !created {
		color.Yellow("collection %s already exists, upserting into it", cfg.CollectionName)
	}

	for start := 0; start < len(items); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]

		texts := make([]string, len(batch))
		for i, item := range batch {
			texts[i] = item.Instruction
		}
		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}

		points := make([]vector.Point, len(batch))
		for i, item := range batch {
			points[i] = vector.Point{
				ID:      uint64(start + i),
				Vector:  vectors[i],
				Payload: chatbot.PayloadFrom(item),
			}
		}
		if err := store.Upsert(ctx, points); err != nil {
			return fmt.Errorf("upload batch at %d: %w", start, err)
		}
		fmt.Printf("uploaded %d/%d items\n", end, len(items))
	}
	return nil
}
