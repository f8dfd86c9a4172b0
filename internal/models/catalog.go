package models

import "gorm.io/gorm"

// TagSlugLength caps slugs generated from a tag name.
const TagSlugLength = 20

// Ingredient is a catalog entry; the same name may exist once per unit.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:256;not null;uniqueIndex:idx_ingredient_name_unit;check:chk_ingredient_name,name <> ''" json:"name"`
	MeasurementUnit string `gorm:"size:16;not null;uniqueIndex:idx_ingredient_name_unit;check:chk_ingredient_unit,measurement_unit <> ''" json:"measurement_unit"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:256;not null;uniqueIndex" json:"name"`
	Color string `gorm:"size:7;not null;uniqueIndex" json:"color"`
	Slug  string `gorm:"size:64;not null;uniqueIndex" json:"slug"`
}

func (Tag) TableName() string {
	return "tags"
}

// BeforeCreate derives the slug from the name when none was given.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.Slug == "" {
		t.Slug = Slugify(t.Name, TagSlugLength)
	}
	return nil
}
