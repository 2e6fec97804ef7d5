package main

import (
	"shop_service/internal/auth"
	"shop_service/internal/repository"
	"shop_service/internal/seed"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data",
	Long: `Create the demo admin (admin@example.com / admin123) and customer
(customer@example.com / customer123) with their carts, four categories and
sample products. Existing rows are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		seeder := seed.NewSeeder(
			repository.NewUserRepository(a.db, a.log),
			repository.NewCategoryRepository(a.db, a.log),
			repository.NewProductRepository(a.db, a.log),
			auth.NewPasswordHasher(a.cfg.BcryptCost),
			a.log,
		)
		_, err = seeder.Run(cmd.Context())
		return err
	},
}
