package service

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/types"
)

// ShoppingListService sums the ingredients of every recipe in a user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate returns one line per distinct (name, unit) pair with the
// amounts summed across the cart, ordered by name then unit. An empty cart
// yields an empty, non-nil list.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error) {
	query, args, err := shoppingListQuery(userID).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build shopping list query")
	}

	items := make([]types.ShoppingListItem, 0)
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, errors.Wrap(err, "failed to aggregate shopping list")
	}
	return items, nil
}

func shoppingListQuery(userID uuid.UUID) sq.SelectBuilder {
	return sq.Select(
		"i.name AS name",
		"i.measurement_unit AS measurement_unit",
		"SUM(ri.amount) AS amount",
	).
		From("cart_entries c").
		Join("recipe_ingredients ri ON ri.recipe_id = c.recipe_id").
		Join("ingredients i ON i.id = ri.ingredient_id").
		Where(sq.Eq{"c.user_id": userID.String()}).
		GroupBy("i.name", "i.measurement_unit").
		OrderBy("i.name", "i.measurement_unit")
}
