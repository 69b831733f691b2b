package main

import (
	"testing"

	"github.com/chatdawah/rag-chatbot/internal/chatbot"
)

func TestMergeItems(t *testing.T) {
	items := []chatbot.KnowledgeItem{
		{Instruction: "What is Zakat?", Output: "Obligatory charity."},
		{Instruction: "  what is zakat?  ", Output: "Duplicate, should be dropped."},
		{Instruction: "What is Hajj?", Output: "The pilgrimage."},
		{Instruction: "", Output: "No instruction, skipped silently."},
		{Instruction: "WHAT IS HAJJ?", Output: "Another duplicate."},
	}

	merged, dups := mergeItems(items)
	if len(merged) != 2 {
		t.Fatalf("expected 2 merged items, got %d", len(merged))
	}
	if dups != 2 {
		t.Errorf("expected 2 duplicates, got %d", dups)
	}
	if merged[0].Instruction != "What is Zakat?" || merged[1].Instruction != "What is Hajj?" {
		t.Errorf("input order not preserved: %+v", merged)
	}
	if merged[0].Output != "Obligatory charity." {
		t.Errorf("first occurrence did not win: %q", merged[0].Output)
	}
}

func TestCleanOutput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Zakat is obligatory charity. [cite: 12]", "Zakat is obligatory charity."},
		{"One [cite: 1, 2] two [cite: 3-5] three", "One two three"},
		{"Spaced   out\n\ttext .", "Spaced out text."},
		{"already clean", "already clean"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := cleanOutput(tt.in); got != tt.want {
			t.Errorf("cleanOutput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeItems(t *testing.T) {
	items := []chatbot.KnowledgeItem{
		{Instruction: "a", Output: "b"},
		{Instruction: "c", Output: "d", Source: "original.json"},
	}

	normalizeItems(items, "data_new.json")
	if items[0].Source != "data_new.json" {
		t.Errorf("missing source not filled in: %q", items[0].Source)
	}
	if items[1].Source != "original.json" {
		t.Errorf("existing source overwritten: %q", items[1].Source)
	}
}

func TestTagLanguage(t *testing.T) {
	item := chatbot.KnowledgeItem{
		Instruction: "What is the meaning of charity in this tradition?",
		Output:      "Charity means giving part of your wealth to those who need it most.",
	}
	tagLanguage(&item)
	if item.Lang != "eng" {
		t.Errorf("expected English detection, got %q", item.Lang)
	}

	tagged := chatbot.KnowledgeItem{Instruction: "x", Output: "y", Lang: "ara"}
	tagLanguage(&tagged)
	if tagged.Lang != "ara" {
		t.Errorf("existing language tag overwritten: %q", tagged.Lang)
	}
}
