package database

import (
	"context"
	"strings"

	"gameforum/models"
)

func ListCategories(ctx context.Context, q QueryClient) ([]*models.Category, error) {
	data := make([]*models.Category, 0)
	err := q.Select(ctx, &data, Query{}.OrderBy("name ASC"))
	return data, wrap("ListCategories", err)
}

func GetCategoryByID(ctx context.Context, q QueryClient, id models.CategoryID) (*models.Category, error) {
	c := new(models.Category)
	err := q.First(ctx, c, Where(Eq("id", id)))
	return optional(c, wrap("GetCategoryByID", err))
}

func GetCategoryByName(ctx context.Context, q QueryClient, name string) (*models.Category, error) {
	c := new(models.Category)
	err := q.First(ctx, c, Where(Eq("name", strings.TrimSpace(name))))
	return optional(c, wrap("GetCategoryByName", err))
}

func InsertCategory(ctx context.Context, q QueryClient, c *models.Category) error {
	return wrap("InsertCategory", q.Insert(ctx, c))
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
