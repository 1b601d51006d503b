// Package openai — клиент chat-completions для генерации рецептов.
// Качество промптов не предмет этого слоя: фиксированные шаблоны, JSON на выходе.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/domain"
)

const defaultBaseURL = "https://api.openai.com"

// Таймаут вендорного вызова; по его истечении наружу уходит 504.
const requestTimeout = 30 * time.Second

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func New(apiKey, baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

const detailsSystemPrompt = "You are a professional chef with expertise in creating detailed, delicious recipes. Always respond with a valid JSON object containing the recipe details."

const detailsUserPrompt = `Create a detailed recipe for '%s' using these ingredients: %s.
Return a JSON object with the following structure:
{
  "description": "Brief, appetizing description",
  "prepTime": "preparation time",
  "cookTime": "cooking time",
  "servings": number,
  "ingredients": [{"name": "ingredient name", "amount": "amount", "unit": "unit"}],
  "instructions": [{"step": number, "text": "instruction text"}],
  "nutritionFacts": {"calories": number, "protein": number, "carbs": number, "fat": number},
  "tips": ["tip1", "tip2", ...]
}`

const suggestSystemPrompt = "You are a professional chef who can suggest creative and delicious recipes based on available ingredients. Always respond with a valid JSON object containing an array of recipes under the 'recipes' key."

const suggestUserPrompt = `Suggest 5 creative recipes I can make with these ingredients: %s.
Return a JSON object with this exact structure:
{
  "recipes": [
    {
      "name": "Recipe Name",
      "description": "Brief description"
    }
  ]
}`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) call(ctx context.Context, model, system, user string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			c.logger.Printf("completion timed out: %v", err)
			return "", domain.NewAPIError(http.StatusGatewayTimeout, "Request timed out")
		}
		c.logger.Printf("completion request failed: %v", err)
		return "", domain.NewAPIError(http.StatusBadGateway, "completion API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Printf("completion status %d: %s", resp.StatusCode, msg)
		return "", domain.NewAPIError(http.StatusBadGateway,
			fmt.Sprintf("completion API returned status %d", resp.StatusCode))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.NewAPIError(http.StatusInternalServerError, "Invalid response format from AI")
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", domain.NewAPIError(http.StatusInternalServerError, "No content in response")
	}
	return out.Choices[0].Message.Content, nil
}

// RecipeDetails генерирует полный рецепт по названию и списку ингредиентов.
func (c *Client) RecipeDetails(ctx context.Context, title string, ingredients []string) (domain.RecipeDetails, error) {
	user := fmt.Sprintf(detailsUserPrompt, title, strings.Join(ingredients, ", "))
	content, err := c.call(ctx, "gpt-4", detailsSystemPrompt, user, 1500)
	if err != nil {
		return domain.RecipeDetails{}, err
	}

	var details domain.RecipeDetails
	if err := json.Unmarshal([]byte(stripFences(content)), &details); err != nil {
		c.logger.Printf("recipe details is not valid JSON: %v", err)
		return domain.RecipeDetails{}, domain.NewAPIError(http.StatusInternalServerError, "Invalid JSON response from AI")
	}
	return details, nil
}

type suggestionsResponse struct {
	Recipes []domain.Suggestion `json:"recipes"`
}

// SuggestRecipes предлагает пять рецептов из имеющихся ингредиентов.
func (c *Client) SuggestRecipes(ctx context.Context, ingredients []string) ([]domain.Suggestion, error) {
	user := fmt.Sprintf(suggestUserPrompt, strings.Join(ingredients, ", "))
	content, err := c.call(ctx, "gpt-3.5-turbo", suggestSystemPrompt, user, 1000)
	if err != nil {
		return nil, err
	}

	var out suggestionsResponse
	if err := json.Unmarshal([]byte(stripFences(content)), &out); err != nil {
		c.logger.Printf("suggestions are not valid JSON: %v", err)
		return nil, domain.NewAPIError(http.StatusInternalServerError, "Invalid response format from AI")
	}
	if out.Recipes == nil {
		return nil, domain.NewAPIError(http.StatusInternalServerError, "Invalid response format from AI")
	}
	for _, rec := range out.Recipes {
		if rec.Name == "" || rec.Description == "" {
			return nil, domain.NewAPIError(http.StatusInternalServerError, "Invalid recipe format in AI response")
		}
	}
	return out.Recipes, nil
}

// Модель иногда заворачивает JSON в markdown-ограду.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
