package product

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junpakpark/productmanage/internal/apperrors"
	"github.com/junpakpark/productmanage/internal/models"
)

var (
	seller      = models.Identity{SubjectID: 1, Role: models.RoleSeller}
	otherSeller = models.Identity{SubjectID: 2, Role: models.RoleSeller}
	buyer       = models.Identity{SubjectID: 3, Role: models.RoleBuyer}
	admin       = models.Identity{SubjectID: 4, Role: models.RoleAdmin}
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func keyboard() models.Product {
	return models.Product{
		Name:        "keyboard",
		Description: "mechanical",
		Price:       money("100.505"),
		ShippingFee: money("3"),
	}
}

func selectOption(name string, choices ...string) models.Option {
	return models.Option{Name: name, Kind: models.OptionSelect, AdditionalPrice: decimal.Zero, Choices: choices}
}

func inputOption(name string) models.Option {
	return models.Option{Name: name, Kind: models.OptionInput, AdditionalPrice: money("1.5")}
}

func TestProductService(t *testing.T) {
	t.Parallel()

	// Create service with single product owned by seller
	setup := func(t *testing.T, options ...models.Option) (*ProductService, models.Product) {
		s := NewService(newFakeStorage())
		p := keyboard()
		p.Options = options

		created, err := s.Create(t.Context(), seller, p)
		require.NoError(t, err, "product creation should be ok")
		return s, created
	}

	t.Run("Create", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			s, p := setup(t, selectOption("color", "white", "black", "white"), inputOption("engraving"))

			assert.NotZero(t, p.ID)
			assert.Equal(t, seller.SubjectID, p.MemberID, "owner is the caller")
			assert.Equal(t, "100.51", p.Price.StringFixed(2), "price rounds half up to cents")
			require.Len(t, p.Options, 2)
			assert.Equal(t, []string{"black", "white"}, p.Options[0].Choices, "choices sorted and deduplicated")
			assert.Nil(t, p.Options[1].Choices)

			got, err := s.Get(t.Context(), p.ID)
			require.NoError(t, err)
			assert.Equal(t, p.ID, got.ID)
		})

		t.Run("owner is always the caller", func(t *testing.T) {
			s := NewService(newFakeStorage())
			p := keyboard()
			p.MemberID = otherSeller.SubjectID

			created, err := s.Create(t.Context(), seller, p)
			require.NoError(t, err)
			assert.Equal(t, seller.SubjectID, created.MemberID)
		})

		t.Run("admin may create", func(t *testing.T) {
			s := NewService(newFakeStorage())

			_, err := s.Create(t.Context(), admin, keyboard())
			require.NoError(t, err)
		})

		t.Run("buyer forbidden", func(t *testing.T) {
			s := NewService(newFakeStorage())

			_, err := s.Create(t.Context(), buyer, keyboard())
			require.ErrorIs(t, err, apperrors.ErrRoleForbidden)
		})

		t.Run("invalid product", func(t *testing.T) {
			tests := []struct {
				name   string
				modify func(p *models.Product)
			}{
				{"blank name", func(p *models.Product) { p.Name = "   " }},
				{"long name", func(p *models.Product) { p.Name = strings.Repeat("a", MaxNameLength+1) }},
				{"long description", func(p *models.Product) { p.Description = strings.Repeat("a", MaxDescriptionLength+1) }},
				{"zero price", func(p *models.Product) { p.Price = decimal.Zero }},
				{"negative price", func(p *models.Product) { p.Price = money("-1") }},
				{"negative shipping fee", func(p *models.Product) { p.ShippingFee = money("-0.01") }},
				{"too many options", func(p *models.Product) {
					p.Options = []models.Option{inputOption("a"), inputOption("b"), inputOption("c"), inputOption("d")}
				}},
				{"duplicated option", func(p *models.Product) {
					p.Options = []models.Option{inputOption("a"), selectOption("a", "x")}
				}},
				{"input with choices", func(p *models.Product) {
					o := inputOption("a")
					o.Choices = []string{"x"}
					p.Options = []models.Option{o}
				}},
				{"select without choices", func(p *models.Product) { p.Options = []models.Option{selectOption("a")} }},
				{"blank choice", func(p *models.Product) { p.Options = []models.Option{selectOption("a", " ")} }},
				{"long choice", func(p *models.Product) {
					p.Options = []models.Option{selectOption("a", strings.Repeat("x", MaxChoiceLength+1))}
				}},
				{"unknown kind", func(p *models.Product) { p.Options = []models.Option{{Name: "a", Kind: "RADIO"}} }},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					s := NewService(newFakeStorage())
					p := keyboard()
					tt.modify(&p)

					_, err := s.Create(t.Context(), seller, p)
					require.ErrorIs(t, err, apperrors.ErrProductInvalid)
				})
			}
		})

		t.Run("zero shipping fee ok", func(t *testing.T) {
			s := NewService(newFakeStorage())
			p := keyboard()
			p.ShippingFee = decimal.Zero

			_, err := s.Create(t.Context(), seller, p)
			require.NoError(t, err)
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("update ok", func(t *testing.T) {
			s, p := setup(t)
			changed := keyboard()
			changed.Name = "keyboard v2"
			changed.Price = money("150")

			err := s.Update(t.Context(), seller, p.ID, changed)
			require.NoError(t, err)

			got, err := s.Get(t.Context(), p.ID)
			require.NoError(t, err)
			assert.Equal(t, "keyboard v2", got.Name)
			assert.True(t, money("150").Equal(got.Price))
		})

		t.Run("other seller fail", func(t *testing.T) {
			s, p := setup(t)

			err := s.Update(t.Context(), otherSeller, p.ID, keyboard())
			require.ErrorIs(t, err, apperrors.ErrProductOwnerMismatch)
		})

		t.Run("admin is not the owner", func(t *testing.T) {
			s, p := setup(t)

			err := s.Update(t.Context(), admin, p.ID, keyboard())
			require.ErrorIs(t, err, apperrors.ErrProductOwnerMismatch)
		})

		t.Run("buyer forbidden before lookup", func(t *testing.T) {
			s := NewService(newFakeStorage())

			err := s.Update(t.Context(), buyer, 100, keyboard())
			require.ErrorIs(t, err, apperrors.ErrRoleForbidden)
		})

		t.Run("not found", func(t *testing.T) {
			s := NewService(newFakeStorage())

			err := s.Update(t.Context(), seller, 100, keyboard())
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("Delete", func(t *testing.T) {
		s, p := setup(t, inputOption("engraving"))

		err := s.Delete(t.Context(), otherSeller, p.ID)
		require.ErrorIs(t, err, apperrors.ErrProductOwnerMismatch)

		err = s.Delete(t.Context(), seller, p.ID)
		require.NoError(t, err)

		_, err = s.Get(t.Context(), p.ID)
		require.ErrorIs(t, err, apperrors.ErrProductNotFound)
	})

	t.Run("AddOption", func(t *testing.T) {
		t.Run("add ok", func(t *testing.T) {
			s, p := setup(t)

			o, err := s.AddOption(t.Context(), seller, p.ID, selectOption(" size ", "M", "S"))
			require.NoError(t, err)
			assert.NotZero(t, o.ID)
			assert.Equal(t, "size", o.Name)
			assert.Equal(t, []string{"M", "S"}, o.Choices)
		})

		t.Run("fourth option fail", func(t *testing.T) {
			s, p := setup(t, inputOption("a"), inputOption("b"), inputOption("c"))

			_, err := s.AddOption(t.Context(), seller, p.ID, inputOption("d"))
			require.ErrorIs(t, err, apperrors.ErrProductInvalid)
		})

		t.Run("duplicated name fail", func(t *testing.T) {
			s, p := setup(t, inputOption("a"))

			_, err := s.AddOption(t.Context(), seller, p.ID, selectOption("a", "x"))
			require.ErrorIs(t, err, apperrors.ErrProductInvalid)
		})

		t.Run("other seller fail", func(t *testing.T) {
			s, p := setup(t)

			_, err := s.AddOption(t.Context(), otherSeller, p.ID, inputOption("a"))
			require.ErrorIs(t, err, apperrors.ErrProductOwnerMismatch)
		})
	})

	t.Run("UpdateOption", func(t *testing.T) {
		t.Run("update ok", func(t *testing.T) {
			s, p := setup(t, selectOption("color", "black"), inputOption("engraving"))
			color := p.Options[0]

			err := s.UpdateOption(t.Context(), seller, p.ID, color.ID, selectOption("colour", "red", "blue"))
			require.NoError(t, err)

			got, err := s.Get(t.Context(), p.ID)
			require.NoError(t, err)
			assert.Equal(t, "colour", got.Options[0].Name)
			assert.Equal(t, []string{"blue", "red"}, got.Options[0].Choices)
		})

		t.Run("same name is not a duplicate of itself", func(t *testing.T) {
			s, p := setup(t, inputOption("a"), inputOption("b"), inputOption("c"))

			err := s.UpdateOption(t.Context(), seller, p.ID, p.Options[0].ID, inputOption("a"))
			require.NoError(t, err, "full product may still update its options")
		})

		t.Run("empty kind keeps stored kind", func(t *testing.T) {
			s, p := setup(t, inputOption("engraving"))

			err := s.UpdateOption(t.Context(), seller, p.ID, p.Options[0].ID, models.Option{Name: "text", AdditionalPrice: money("2")})
			require.NoError(t, err)
		})

		t.Run("kind change fail", func(t *testing.T) {
			s, p := setup(t, inputOption("engraving"))

			err := s.UpdateOption(t.Context(), seller, p.ID, p.Options[0].ID, selectOption("engraving", "x"))
			require.ErrorIs(t, err, apperrors.ErrProductInvalid)
		})

		t.Run("rename to other option name fail", func(t *testing.T) {
			s, p := setup(t, inputOption("a"), inputOption("b"))

			err := s.UpdateOption(t.Context(), seller, p.ID, p.Options[0].ID, inputOption("b"))
			require.ErrorIs(t, err, apperrors.ErrProductInvalid)
		})

		t.Run("unknown option fail", func(t *testing.T) {
			s, p := setup(t, inputOption("a"))

			err := s.UpdateOption(t.Context(), seller, p.ID, 1000, inputOption("a"))
			require.ErrorIs(t, err, apperrors.ErrProductNotFound)
		})
	})

	t.Run("RemoveOption", func(t *testing.T) {
		s, p := setup(t, inputOption("a"), inputOption("b"))

		err := s.RemoveOption(t.Context(), buyer, p.ID, p.Options[0].ID)
		require.ErrorIs(t, err, apperrors.ErrRoleForbidden)

		err = s.RemoveOption(t.Context(), seller, p.ID, p.Options[0].ID)
		require.NoError(t, err)

		err = s.RemoveOption(t.Context(), seller, p.ID, p.Options[0].ID)
		require.ErrorIs(t, err, apperrors.ErrProductNotFound, "removed option is gone")

		got, err := s.Get(t.Context(), p.ID)
		require.NoError(t, err)
		require.Len(t, got.Options, 1)
		assert.Equal(t, "b", got.Options[0].Name)
	})

	t.Run("List", func(t *testing.T) {
		s := NewService(newFakeStorage())
		for range 3 {
			_, err := s.Create(t.Context(), seller, keyboard())
			require.NoError(t, err)
		}

		all, err := s.List(t.Context(), 0, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Greater(t, all[0].ID, all[1].ID, "newest first")

		page, err := s.List(t.Context(), 2, 2)
		require.NoError(t, err)
		require.Len(t, page, 1)
	})
}
