package validation

import (
	"errors"
	"fmt"
	"strings"

	"catalog/internal/apperr"
	"catalog/internal/logger"
	"catalog/internal/models"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func New(logger *logger.Logger) *Validator {
	return &Validator{
		validate: validator.New(),
		logger:   logger,
	}
}

type productRules struct {
	Title string       `validate:"required,max=255"`
	Price models.Money `validate:"gte=0"`
	SKU   string       `validate:"omitempty,max=255"`
}

type pushRules struct {
	ShopifyID string       `validate:"required,numeric"`
	Title     string       `validate:"required,max=255"`
	Price     models.Money `validate:"gte=0"`
}

// ValidateProduct checks a product before it is written.
func (v *Validator) ValidateProduct(product *models.Product) error {
	return v.check("product", productRules{
		Title: strings.TrimSpace(product.Title),
		Price: product.Price,
		SKU:   models.StringValue(product.SKU),
	})
}

// ValidatePush checks an optimized product before it is sent to Shopify.
func (v *Validator) ValidatePush(optimized *models.OptimizedProduct) error {
	return v.check("optimized product", pushRules{
		ShopifyID: models.StringValue(optimized.ShopifyID),
		Title:     strings.TrimSpace(optimized.Title),
		Price:     optimized.Price,
	})
}

func (v *Validator) check(what string, rules interface{}) error {
	err := v.validate.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	v.logger.Debug("Invalid %s: %s", what, strings.Join(msgs, "; "))
	return &apperr.ValidationError{
		Message: fmt.Sprintf("invalid %s: %s", what, strings.Join(msgs, "; ")),
		Fields:  fields,
	}
}
