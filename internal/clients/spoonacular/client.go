// Package spoonacular — клиент рецептурного API.
// Ранжирование и качество выдачи — целиком на стороне вендора.
package spoonacular

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wnsghl6272/total-cooked/internal/domain"
)

const defaultBaseURL = "https://api.spoonacular.com"

// Сколько рецептов просим у поиска по ингредиентам.
const searchNumber = 5

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
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type foundRecipe struct {
	ID                    int    `json:"id"`
	Title                 string `json:"title"`
	Image                 string `json:"image"`
	MissedIngredientCount int    `json:"missedIngredientCount"`
}

type recipeInformation struct {
	ReadyInMinutes int    `json:"readyInMinutes"`
	SourceURL      string `json:"sourceUrl"`
	Instructions   string `json:"instructions"`
}

// SearchByIngredients ищет рецепты по списку ингредиентов и дотягивает
// детали по каждому найденному (готовность, ссылка, инструкции).
func (c *Client) SearchByIngredients(ctx context.Context, ingredients []string) ([]domain.RecipeSummary, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("ingredients", strings.Join(ingredients, ","))
	q.Set("number", fmt.Sprint(searchNumber))
	q.Set("ranking", "2")
	q.Set("ignorePantry", "true")

	var found []foundRecipe
	if err := c.getJSON(ctx, "/recipes/findByIngredients?"+q.Encode(), &found); err != nil {
		return nil, err
	}

	// Детали тянем параллельно, как и положено независимым запросам.
	out := make([]domain.RecipeSummary, len(found))
	g, gctx := errgroup.WithContext(ctx)
	for i, rec := range found {
		g.Go(func() error {
			var info recipeInformation
			path := fmt.Sprintf("/recipes/%d/information?apiKey=%s", rec.ID, url.QueryEscape(c.apiKey))
			if err := c.getJSON(gctx, path, &info); err != nil {
				return err
			}
			out[i] = domain.RecipeSummary{
				ID:                    rec.ID,
				Title:                 rec.Title,
				Image:                 rec.Image,
				ReadyInMinutes:        info.ReadyInMinutes,
				MissedIngredientCount: rec.MissedIngredientCount,
				SourceURL:             info.SourceURL,
				Instructions:          info.Instructions,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// RecipeInformation — прозрачный прокси детальной карточки рецепта.
func (c *Client) RecipeInformation(ctx context.Context, id int) (json.RawMessage, error) {
	var raw json.RawMessage
	path := fmt.Sprintf("/recipes/%d/information?apiKey=%s", id, url.QueryEscape(c.apiKey))
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

type ingredientSuggestion struct {
	Name string `json:"name"`
}

// AutocompleteIngredients подсказывает названия ингредиентов по префиксу.
func (c *Client) AutocompleteIngredients(ctx context.Context, query string, number int) ([]string, error) {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("query", query)
	q.Set("number", fmt.Sprint(number))
	q.Set("metaInformation", "true")

	var items []ingredientSuggestion
	if err := c.getJSON(ctx, "/food/ingredients/autocomplete?"+q.Encode(), &items); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return domain.NewAPIError(http.StatusInternalServerError, "building request failed")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("GET %s failed: %v", path, err)
		return domain.NewAPIError(http.StatusBadGateway, "recipe API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Printf("GET %s: status %d", path, resp.StatusCode)
		return domain.NewAPIError(http.StatusBadGateway,
			fmt.Sprintf("recipe API returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		c.logger.Printf("GET %s: decode failed: %v", path, err)
		return domain.NewAPIError(http.StatusBadGateway, "recipe API returned malformed response")
	}
	return nil
}
