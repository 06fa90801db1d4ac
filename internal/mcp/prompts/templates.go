package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	createItemFromTextPrompt = "create_item_from_text"
	catalogSummaryPrompt     = "catalog_summary"
	restockReviewPrompt      = "restock_review"
)

type PromptTemplates struct{}

func NewPromptTemplates() *PromptTemplates {
	return &PromptTemplates{}
}

func (p *PromptTemplates) CreateItemFromTextPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		createItemFromTextPrompt,
		mcp.WithPromptDescription("Parse a free-form product description into a structured item payload"),
		mcp.WithArgument("description", mcp.ArgumentDescription("Raw product description text")),
		mcp.WithArgument("default_category", mcp.ArgumentDescription("Category to use when none is mentioned")),
	)
}

func (p *PromptTemplates) CatalogSummaryPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		catalogSummaryPrompt,
		mcp.WithPromptDescription("Summarize the catalog for a given audience using the items and stats resources"),
		mcp.WithArgument("audience", mcp.ArgumentDescription("Who the summary is for (e.g. buyers, management)")),
		mcp.WithArgument("focus_category", mcp.ArgumentDescription("Optional category to emphasize")),
	)
}

func (p *PromptTemplates) RestockReviewPrompt() mcp.Prompt {
	return mcp.NewPrompt(
		restockReviewPrompt,
		mcp.WithPromptDescription("Review unavailable items and recommend which ones to restock first"),
		mcp.WithArgument("budget", mcp.ArgumentDescription("Approximate restocking budget")),
		mcp.WithArgument("category", mcp.ArgumentDescription("Optional category to restrict the review to")),
	)
}

func (p *PromptTemplates) CreateItemFromTextHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	description := getArgString(args, "description")
	category := getArgString(args, "default_category")
	if category == "" {
		category = "general"
	}

	text := fmt.Sprintf("Convert the following product description into an item payload with name, description, price, category, and is_available fields. Use category %q when the text does not name one, then call the create_item tool with the result.\n\nProduct description:\n%s", category, description)

	return &mcp.GetPromptResult{
		Description: "Create a structured item payload from a natural language description",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

func (p *PromptTemplates) CatalogSummaryHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	audience := getArgString(args, "audience")
	if audience == "" {
		audience = "a general audience"
	}
	focus := getArgString(args, "focus_category")

	text := fmt.Sprintf("Read the items://categories and stats://database resources and write a short catalog summary for %s. Cover item counts, availability, and pricing.", audience)
	if focus != "" {
		text += fmt.Sprintf(" Pay particular attention to the %q category.", focus)
	}

	return &mcp.GetPromptResult{
		Description: "Summarize the catalog from live store data",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

func (p *PromptTemplates) RestockReviewHandler(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	budget := getArgString(args, "budget")
	category := getArgString(args, "category")

	text := "Use the get_items tool with available_only unset to find items that are currently unavailable, then recommend a restocking order with reasoning."
	if category != "" {
		text += fmt.Sprintf(" Restrict the review to the %q category.", category)
	}
	if budget != "" {
		text += fmt.Sprintf(" Keep the total estimated cost within %s.", budget)
	}

	return &mcp.GetPromptResult{
		Description: "Recommend which unavailable items to restock first",
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}

func getArgString(args map[string]string, key string) string {
	if args == nil {
		return ""
	}
	if value, ok := args[key]; ok {
		return value
	}
	return ""
}
