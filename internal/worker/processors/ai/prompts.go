package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"catalog/internal/models"
)

const optimizerInstructions = `You are an expert e-commerce merchandiser and SEO specialist.

Analyze the product below and generate optimized content to increase sales and search visibility:
1. suggested_title: a compelling, keyword-rich title under 60 characters.
2. suggested_description: a persuasive, informative description that highlights key features and benefits.
3. seo_keywords: a list of 5-10 relevant SEO keywords.

Return ONLY a JSON object with exactly these keys. No explanations, no markdown.`

func buildOptimizePrompt(product ProductInput, opts Options) (string, error) {
	productJSON, err := json.Marshal(struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Tags        string `json:"tags"`
	}{product.Title, product.Description, product.Tags})
	if err != nil {
		return "", fmt.Errorf("failed to marshal product: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(optimizerInstructions)
	sb.WriteString("\n\nProduct Input:\n")
	sb.Write(productJSON)
	if opts.Category != "" {
		fmt.Fprintf(&sb, "\nCategory: %s", opts.Category)
	}
	if opts.SEOFocus != "" {
		fmt.Fprintf(&sb, "\nSEO Focus: %s", opts.SEOFocus)
	}
	if opts.WritingTone != "" {
		fmt.Fprintf(&sb, "\nWriting Tone: %s", opts.WritingTone)
	}
	return sb.String(), nil
}

func buildInsightsPrompt(description string) string {
	return fmt.Sprintf("Generate concise and compelling marketing insights for the following product description: %s. "+
		"Return the insights in a structured JSON format including: "+
		"'product_overview' (string), "+
		"'key_benefits' (list of strings), "+
		"'target_audience' (string), "+
		"'unique_selling_points' (list of strings), "+
		"'competitor_insights' (list of objects with name, product_url, features), "+
		"'keyword_suggestions' (list of strings), "+
		"'keyword_optimization_score' (integer from 0-100, based on keyword density and relevance), "+
		"'seo_friendliness_score' (integer from 0-100, based on description quality for search engines), "+
		"'overall_optimization_score' (integer from 0-100, overall assessment).", description)
}

func buildCompetitorPrompt(p *models.OptimizedProduct) string {
	return fmt.Sprintf("Analyze the product: Title: %s, Description: %s, Tags: %s. "+
		"Find competitor insights and keyword suggestions based on this product. "+
		"Return the insights in a structured JSON format including 'competitor_insights' "+
		"(list of objects with name, product_url, features) and 'keyword_suggestions' (list of strings).",
		p.Title, p.Description, p.Tags)
}

func buildComparisonPrompt(original, optimized string) string {
	var sb strings.Builder
	sb.WriteString("You are an expert in e-commerce SEO and product listing optimization. ")
	sb.WriteString("Compare the following product details:\n\n")
	fmt.Fprintf(&sb, "Original Product Details:\n- Description: %s\n\n", original)
	fmt.Fprintf(&sb, "Optimized Product Details:\n- Description: %s\n\n", optimized)
	sb.WriteString(`Your task:
1. Analyze how the optimized product details are better (or worse) than the original in terms of: SEO keyword richness, clarity and readability, persuasiveness (conversion potential), uniqueness vs generic phrasing, and compliance with best practices for product listings (title length, keyword placement, etc.).
2. Assign a numeric score (0-100) for each metric above for both the Original and Optimized versions.
3. Provide an Overall SEO Impact Score (0-100) showing how much more reach/visibility the optimized version is likely to achieve compared to the original.
4. Return results strictly in JSON format with the structure:
{
  "comparison": {
    "seo_keyword_richness": {"original": number, "optimized": number, "insight": "string"},
    "clarity_readability": {"original": number, "optimized": number, "insight": "string"},
    "persuasiveness": {"original": number, "optimized": number, "insight": "string"},
    "uniqueness": {"original": number, "optimized": number, "insight": "string"},
    "best_practices": {"original": number, "optimized": number, "insight": "string"}
  },
  "overall_score": {"original": number, "optimized": number, "insight": "string"},
  "conclusion": "string"
}

Make sure the insights are concise, actionable, and measurable.`)
	return sb.String()
}

func buildChatPrompt(message string, original *models.Product, optimized *models.OptimizedProduct) string {
	var parts []string
	if original != nil {
		parts = append(parts, fmt.Sprintf("Original Product Details: Title: %s, Description: %s, Price: %s, SKU: %s, Tags: %s.",
			original.Title, original.Description, original.Price, models.StringValue(original.SKU), original.Tags))
	}
	if optimized != nil {
		parts = append(parts, fmt.Sprintf("Optimized Product Details: Title: %s, Description: %s, Price: %s, SKU: %s, Tags: %s.",
			optimized.Title, optimized.Description, optimized.Price, models.StringValue(optimized.SKU), optimized.Tags))
	}
	parts = append(parts, message)
	return strings.Join(parts, " ")
}
