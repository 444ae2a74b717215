package gemini

import (
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("PlayStation 5 Slim", "18.999,00 TL")
	if !strings.Contains(p, "PlayStation 5 Slim") || !strings.Contains(p, "18.999,00 TL") {
		t.Errorf("prompt missing inputs: %q", p)
	}
}

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("AL. "), genai.Text("Fiyat dipte.")}}},
			{Content: nil},
		},
	}
	if got := extractText(resp); got != "AL. Fiyat dipte." {
		t.Errorf("extractText = %q", got)
	}
}

func TestAcquire_PacesCalls(t *testing.T) {
	g := &geminiClient{sem: make(chan struct{}, 1), delay: 30 * time.Millisecond}

	start := time.Now()
	g.acquire()()
	g.acquire()()
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("second call was not delayed: %v", elapsed)
	}
}
