package spoonacular

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/easyeats/easyeats/internal/logging"
)

// DefaultBaseURL is the public Spoonacular API.
const DefaultBaseURL = "https://api.spoonacular.com"

// SearchResultLimit is how many results a search asks for.
const SearchResultLimit = 50

const maxResponseBytes = 4 << 20

// Client talks to the Spoonacular REST API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient builds a client; an empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Search runs a complex search for query with recipe information included.
func (c *Client) Search(ctx context.Context, query string) ([]Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("number", strconv.Itoa(SearchResultLimit))
	params.Set("addRecipeInformation", "true")

	body, err := c.get(ctx, "/recipes/complexSearch", params)
	if err != nil {
		return nil, err
	}

	results := gjson.GetBytes(body, "results").Array()
	summaries := make([]Summary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, Summary{
			ID:               int(r.Get("id").Int()),
			Title:            r.Get("title").String(),
			Image:            r.Get("image").String(),
			ReadyInMinutes:   int(r.Get("readyInMinutes").Int()),
			Vegetarian:       r.Get("vegetarian").Bool(),
			SpoonacularScore: r.Get("spoonacularScore").Float(),
			Calories:         r.Get(`nutrition.nutrients.#(name=="Calories").amount`).Float(),
		})
	}
	return summaries, nil
}

// Details fetches the full information payload, nutrition included, for id.
func (c *Client) Details(ctx context.Context, id int) (Details, error) {
	params := url.Values{}
	params.Set("includeNutrition", "true")

	body, err := c.get(ctx, fmt.Sprintf("/recipes/%d/information", id), params)
	if err != nil {
		return Details{}, err
	}

	doc := gjson.ParseBytes(body)
	details := Details{
		ID:             int(doc.Get("id").Int()),
		Title:          doc.Get("title").String(),
		Image:          doc.Get("image").String(),
		ReadyInMinutes: int(doc.Get("readyInMinutes").Int()),
		Servings:       int(doc.Get("servings").Int()),
		Vegetarian:     doc.Get("vegetarian").Bool(),
		Vegan:          doc.Get("vegan").Bool(),
		GlutenFree:     doc.Get("glutenFree").Bool(),
		Calories:       doc.Get(`nutrition.nutrients.#(name=="Calories").amount`).Float(),
	}

	for _, ing := range doc.Get("extendedIngredients").Array() {
		details.Ingredients = append(details.Ingredients, Ingredient{
			Name:   ing.Get("name").String(),
			Amount: ing.Get("amount").Float(),
			Unit:   ing.Get("unit").String(),
		})
	}

	// Only the first instruction group is shown.
	for _, step := range doc.Get("analyzedInstructions.0.steps.#.step").Array() {
		details.Steps = append(details.Steps, step.String())
	}

	for _, n := range doc.Get("nutrition.nutrients").Array() {
		details.Nutrients = append(details.Nutrients, Nutrient{
			Name:   n.Get("name").String(),
			Amount: n.Get("amount").Float(),
			Unit:   n.Get("unit").String(),
		})
	}

	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return nil, ErrUnavailable
	}

	ctx, span := logging.StartSpan(ctx, "spoonacular "+path)
	defer span.End()

	params.Set("apiKey", c.APIKey)
	endpoint := c.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.Fail(err)
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		span.Fail(err)
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		span.Fail(err)
		return nil, fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode, gjson.GetBytes(body, "message").String())
		span.Fail(err)
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		err := fmt.Errorf("%w: malformed json", ErrRequestFailed)
		span.Fail(err)
		return nil, err
	}

	return body, nil
}

var _ Searcher = (*Client)(nil)
