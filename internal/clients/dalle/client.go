// Package dalle — клиент генерации картинок. Вендорные ссылки живут около часа,
// поэтому готовые байты зеркалируются в наш бакет; провал зеркала не фатален —
// остаёмся на вендорном URL.
package dalle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wnsghl6272/total-cooked/internal/domain"
)

const defaultBaseURL = "https://api.openai.com"

// Mirror — куда складываем байты сгенерированной картинки.
type Mirror interface {
	Put(ctx context.Context, r io.Reader, hintName, mime string) (string, error)
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *log.Logger
	mirror  Mirror // nil — зеркалирование выключено

	// Пауза между картинками в пакетной генерации (rate limit вендора).
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration)
}

func New(apiKey, baseURL string, mirror Mirror, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
		mirror:  mirror,
		delay:   time.Second,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

// GenerateFoodImage генерирует одну картинку по промпту.
func (c *Client) GenerateFoodImage(ctx context.Context, prompt string) (domain.DalleImage, error) {
	body, err := json.Marshal(generationRequest{
		Model:  "dall-e-3",
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	})
	if err != nil {
		return domain.DalleImage{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/images/generations", bytes.NewReader(body))
	if err != nil {
		return domain.DalleImage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("generation request failed: %v", err)
		return domain.DalleImage{}, domain.NewAPIError(http.StatusBadGateway, "image API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Printf("generation status %d: %s", resp.StatusCode, msg)
		return domain.DalleImage{}, domain.NewAPIError(http.StatusBadGateway,
			fmt.Sprintf("image API returned status %d", resp.StatusCode))
	}

	var out generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || len(out.Data) == 0 || out.Data[0].URL == "" {
		c.logger.Printf("generation response malformed: %v", err)
		return domain.DalleImage{}, domain.NewAPIError(http.StatusBadGateway, "image API returned malformed response")
	}

	img := domain.DalleImage{
		ID:             uuid.NewString(),
		URL:            out.Data[0].URL,
		AltDescription: prompt,
		Prompt:         prompt,
		CreatedAt:      time.Unix(out.Created, 0).UTC().Format(time.RFC3339),
	}
	img.URL = c.mirrorURL(ctx, img.ID, img.URL)
	return img, nil
}

// GenerateRecipeImages генерирует count картинок по одной теме.
// Строго последовательно, с паузой между вызовами.
func (c *Client) GenerateRecipeImages(ctx context.Context, query string, count int) ([]domain.DalleImage, error) {
	prompt := fmt.Sprintf("professional food photography of %s, appetizing, high quality", query)

	images := make([]domain.DalleImage, 0, count)
	var lastErr error
	for i := 0; i < count; i++ {
		img, err := c.GenerateFoodImage(ctx, prompt)
		if err != nil {
			c.logger.Printf("image %d/%d for %q failed: %v", i+1, count, query, err)
			lastErr = err
		} else {
			images = append(images, img)
		}
		if i < count-1 {
			c.sleep(ctx, c.delay)
		}
	}
	if len(images) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return images, nil
}

// mirrorURL скачивает картинку и кладёт в бакет; при любом сбое
// возвращает исходный вендорный URL.
func (c *Client) mirrorURL(ctx context.Context, id, vendorURL string) string {
	if c.mirror == nil {
		return vendorURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, vendorURL, nil)
	if err != nil {
		return vendorURL
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("mirror download failed (keeping vendor url): %v", err)
		return vendorURL
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("mirror download status %d (keeping vendor url)", resp.StatusCode)
		return vendorURL
	}

	stored, err := c.mirror.Put(ctx, resp.Body, id+".png", "image/png")
	if err != nil {
		c.logger.Printf("mirror upload failed (keeping vendor url): %v", err)
		return vendorURL
	}
	return stored
}
