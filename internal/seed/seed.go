package seed

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/shopspring/decimal"
	"nixtia-store/internal/domain"
	productrepo "nixtia-store/internal/repository/product"
)

type productSeed struct {
	Name        string
	Description string
	Price       string
}

var catalog = []productSeed{
	{
		Name:        "Masa de Maíz Azul Orgánica",
		Description: "Masa fresca de maíz azul ancestral, molida a mano con técnicas tradicionales. Perfecta para tortillas, tamales y antojitos.",
		Price:       "45.00",
	},
	{
		Name:        "Tortillas de Maíz Tradicionales",
		Description: "Tortillas hechas a mano con maíz nixtamalizado, siguiendo recetas de generaciones.",
		Price:       "35.00",
	},
	{
		Name:        "Harina de Maíz Nixtamalizado",
		Description: "Harina fina de maíz nixtamalizado, ideal para tortillas, atoles y postres tradicionales. Sin conservantes ni aditivos.",
		Price:       "120.50",
	},
	{
		Name:        "Tostadas de Maíz Crujientes",
		Description: "Tostadas artesanales doradas al comal, extra crujientes. Paquete de 20 piezas.",
		Price:       "28.00",
	},
	{
		Name:        "Tlayudas Oaxaqueñas Grandes",
		Description: "Tlayudas tradicionales oaxaqueñas de gran tamaño, elaboradas con maíz criollo.",
		Price:       "55.00",
	},
	{
		Name:        "Pinole de Maíz Tostado",
		Description: "Pinole artesanal de maíz tostado y molido con canela. Bolsa de 500g.",
		Price:       "38.00",
	},
	{
		Name:        "Atole de Maíz Morado Premium",
		Description: "Mezcla premium para atole de maíz morado, endulzado con piloncillo. Rinde 6 tazas.",
		Price:       "42.00",
	},
	{
		Name:        "Tamales de Elote Frescos",
		Description: "Tamales dulces de elote tierno, envueltos en hoja de maíz. Paquete de 6 tamales.",
		Price:       "85.00",
	},
	{
		Name:        "Esquites Gourmet Preparados",
		Description: "Granos de maíz tierno cocidos con epazote, con mayonesa, queso cotija, chile piquín y limón.",
		Price:       "32.00",
	},
	{
		Name:        "Maíz Pozolero Cacahuazintle",
		Description: "Granos grandes de maíz cacahuazintle para pozole tradicional. Bolsa de 1kg.",
		Price:       "65.00",
	},
}

// Catalog returns the artisan corn products the store launches with.
func Catalog() []domain.Product {
	out := make([]domain.Product, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, domain.Product{
			Name:        p.Name,
			Description: p.Description,
			Price:       decimal.RequireFromString(p.Price),
			IsActive:    true,
		})
	}
	return out
}

// Apply upserts the catalog by product name. It is safe to run repeatedly.
func Apply(ctx context.Context, repo productrepo.Repository, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	for _, p := range Catalog() {
		saved, err := repo.Upsert(ctx, p)
		if err != nil {
			return fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
		logger.Printf("seed: %s $%s", saved.Name, saved.Price.StringFixed(2))
	}
	return nil
}
