package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationErrors ошибки входного запроса по полям
type ValidationErrors map[string][]string

func (v ValidationErrors) add(field, format string, args ...interface{}) {
	v[field] = append(v[field], fmt.Sprintf(format, args...))
}

// Fields возвращает отсортированные имена полей с ошибками
func (v ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		parts = append(parts, strings.Join(v[f], " "))
	}
	return "validation failed: " + strings.Join(parts, " ")
}

// CreateProductRequest тело POST /api/v1/shopify/products.
// Указатели отличают отсутствующее поле от нулевого значения.
type CreateProductRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Status      string           `json:"status"`
	Options     []OptionSpec     `json:"options"`
	Variants    []VariantRequest `json:"variants"`
	Images      []ImageSpec      `json:"images,omitempty"`
}

// VariantRequest вариант во входном запросе
type VariantRequest struct {
	Options           OptionAssignments `json:"options"`
	Price             *decimal.Decimal  `json:"price"`
	SKU               string            `json:"sku"`
	InventoryQuantity *int              `json:"inventory_quantity"`
}

// Validate проверяет запрос и возвращает ValidationErrors либо nil
func (r *CreateProductRequest) Validate() error {
	errs := ValidationErrors{}

	required := map[string]string{
		"title":        r.Title,
		"description":  r.Description,
		"vendor":       r.Vendor,
		"product_type": r.ProductType,
		"status":       r.Status,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			errs.add(field, "The %s field is required.", field)
		}
	}
	if r.Status != "" && !ProductStatus(r.Status).Valid() {
		errs.add("status", "The selected status is invalid.")
	}

	declared := make(map[string]struct{}, len(r.Options))
	if len(r.Options) == 0 {
		errs.add("options", "The options field is required.")
	}
	for i, opt := range r.Options {
		field := fmt.Sprintf("options.%d", i)
		if strings.TrimSpace(opt.Name) == "" {
			errs.add(field+".name", "The %s.name field is required.", field)
			continue
		}
		if _, dup := declared[opt.Name]; dup {
			errs.add(field+".name", "The option %q is declared more than once.", opt.Name)
		}
		declared[opt.Name] = struct{}{}
		if len(opt.Values) == 0 {
			errs.add(field+".values", "The %s.values field is required.", field)
		}
	}

	if len(r.Variants) == 0 {
		errs.add("variants", "The variants field is required.")
	}
	for i, v := range r.Variants {
		field := fmt.Sprintf("variants.%d", i)
		if len(v.Options) == 0 {
			errs.add(field+".options", "The %s.options field is required.", field)
		} else if len(declared) > 0 && !sameKeys(v.Options, declared) {
			errs.add(field+".options", "The %s.options keys must match the product options.", field)
		}
		if v.Price == nil {
			errs.add(field+".price", "The %s.price field is required.", field)
		} else if v.Price.IsNegative() {
			errs.add(field+".price", "The %s.price field must be at least 0.", field)
		}
		if strings.TrimSpace(v.SKU) == "" {
			errs.add(field+".sku", "The %s.sku field is required.", field)
		}
		if v.InventoryQuantity == nil {
			errs.add(field+".inventory_quantity", "The %s.inventory_quantity field is required.", field)
		} else if *v.InventoryQuantity < 0 {
			errs.add(field+".inventory_quantity", "The %s.inventory_quantity field must be at least 0.", field)
		}
	}

	for i, img := range r.Images {
		field := fmt.Sprintf("images.%d", i)
		if !isAbsoluteHTTPURL(img.Src) {
			errs.add(field+".src", "The %s.src field must be a valid URL.", field)
		}
		if strings.TrimSpace(img.Alt) == "" {
			errs.add(field+".alt", "The %s.alt field is required.", field)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToSpec переводит провалидированный запрос в ProductSpec
func (r *CreateProductRequest) ToSpec() *ProductSpec {
	spec := &ProductSpec{
		Title:           r.Title,
		DescriptionHTML: r.Description,
		Vendor:          r.Vendor,
		ProductType:     r.ProductType,
		Status:          ProductStatus(r.Status),
		Options:         r.Options,
		Images:          r.Images,
		Variants:        make([]VariantSpec, 0, len(r.Variants)),
	}
	for _, v := range r.Variants {
		variant := VariantSpec{Options: v.Options, SKU: v.SKU}
		if v.Price != nil {
			variant.Price = *v.Price
		}
		if v.InventoryQuantity != nil {
			variant.InventoryQuantity = *v.InventoryQuantity
		}
		spec.Variants = append(spec.Variants, variant)
	}
	return spec
}

func sameKeys(assignments OptionAssignments, declared map[string]struct{}) bool {
	if len(assignments) != len(declared) {
		return false
	}
	for name := range assignments {
		if _, ok := declared[name]; !ok {
			return false
		}
	}
	return true
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
