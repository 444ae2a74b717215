package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
	"google.golang.org/api/option"
)

const systemInstruction = `Rol: Kıdemli Finans ve Teknoloji Analisti.
Kullanıcıya bir ürünün şu anki en iyi fiyatı verilir.
Görev:
1. Bu ürünün 6 aylık fiyat geçmişini (lansman döngüsü) simüle et.
2. Şu an mevsimsel olarak "ALIM FIRSATI" mı yoksa "BEKLEME DÖNEMİ" mi?
3. Net bir tavsiye ver (AL / BEKLE / SAT).
Cevabı Türkçe, kısa ve profesyonel bir dille ver.`

type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
	sem    chan struct{}
	mu     sync.Mutex
	last   time.Time
	delay  time.Duration
}

// NewGeminiClient creates the advisor backed by a Gemini model
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (repository.AIRepository, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.4)
	model.SetTopK(20)
	model.SetTopP(0.9)
	model.SetMaxOutputTokens(1024)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	return &geminiClient{
		client: client,
		model:  model,
		sem:    make(chan struct{}, 2),
		delay:  500 * time.Millisecond,
	}, nil
}

// GenerateAdvice asks the model for a buy/wait recommendation
func (g *geminiClient) GenerateAdvice(ctx context.Context, product, price string) (string, error) {
	release := g.acquire()
	defer release()

	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(product, price)))
	if err != nil {
		return "", fmt.Errorf("failed to generate advice: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response candidates")
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

// BuildPrompt user prompt for one product
func BuildPrompt(product, price string) string {
	return fmt.Sprintf("Ürün: %s\nMevcut En İyi Fiyat: %s", product, price)
}

// extractText concatenates all text parts of the response
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				result.WriteString(string(t))
			}
		}
	}
	return result.String()
}

func (g *geminiClient) acquire() func() {
	g.sem <- struct{}{}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if !g.last.IsZero() {
		if sleep := g.delay - now.Sub(g.last); sleep > 0 {
			time.Sleep(sleep)
			now = time.Now()
		}
	}
	g.last = now

	return func() {
		<-g.sem
	}
}

// Close releases the client
func (g *geminiClient) Close() error {
	return g.client.Close()
}
