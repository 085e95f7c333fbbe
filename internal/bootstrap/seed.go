package bootstrap

import (
	"log"

	"anadara.com/exportmarket/internal/entity"
	"anadara.com/exportmarket/pkg/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Product{},
	)
}

func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@exportmarket.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Email:        "admin@exportmarket.local",
		PasswordHash: string(hashedPasswordBytes),
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         entity.RoleAdmin,
		Status:       entity.StatusActive,
		IsVerified:   true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded")
	log.Println("   Email: admin@exportmarket.local")
	log.Println("   Password: admin123")

	return nil
}

// SeedCategories creates a starter taxonomy so a fresh development database
// has something to browse. Skipped if any category already exists.
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	taxonomy := map[string][]string{
		"Agriculture":      {"Coffee & Tea", "Spices", "Grains"},
		"Textiles":         {"Fabrics", "Garments"},
		"Food & Beverages": {"Processed Foods", "Seafood"},
	}

	// Roots in a stable order so display_order matches insertion order.
	rootNames := []string{"Agriculture", "Textiles", "Food & Beverages"}

	return db.Transaction(func(tx *gorm.DB) error {
		for i, rootName := range rootNames {
			root := entity.Category{
				Name:         rootName,
				Slug:         slug.Make(rootName),
				Level:        0,
				DisplayOrder: i,
				IsActive:     true,
				IsVisible:    true,
			}
			root.Path = root.Slug
			if err := tx.Create(&root).Error; err != nil {
				return err
			}

			for j, childName := range taxonomy[rootName] {
				child := entity.Category{
					Name:         childName,
					Slug:         slug.Make(childName),
					ParentID:     &root.ID,
					Level:        1,
					DisplayOrder: j,
					IsActive:     true,
					IsVisible:    true,
				}
				child.Path = root.Path + "/" + child.Slug
				if err := tx.Create(&child).Error; err != nil {
					return err
				}
			}
		}

		log.Println("Starter category taxonomy seeded")
		return nil
	})
}
