package models

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductStatus статус товара в Shopify
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusArchived ProductStatus = "archived"
)

// Valid сообщает, входит ли статус в допустимый набор
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusDraft, ProductStatusArchived:
		return true
	}
	return false
}

// Upper возвращает значение перечисления ProductStatus в Admin API
func (s ProductStatus) Upper() string {
	return strings.ToUpper(string(s))
}

// OptionSpec опция товара (например Color) и ее значения в заданном порядке
type OptionSpec struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// OptionAssignments значения опций варианта: имя опции -> значение
type OptionAssignments map[string]string

// Equal сравнивает наборы ключей и значения без учета порядка
func (o OptionAssignments) Equal(other OptionAssignments) bool {
	if len(o) != len(other) {
		return false
	}
	for name, value := range o {
		v, ok := other[name]
		if !ok || v != value {
			return false
		}
	}
	return true
}

// Keys возвращает отсортированные имена опций
func (o OptionAssignments) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OptionValue пара значение/опция для ProductVariantsBulkInput.optionValues
type OptionValue struct {
	Name       string `json:"name"`
	OptionName string `json:"optionName"`
}

// OptionValues раскладывает назначения в порядке объявленных опций товара.
// Имена, которых нет в order, добавляются в конец по алфавиту.
func (o OptionAssignments) OptionValues(order []string) []OptionValue {
	values := make([]OptionValue, 0, len(o))
	seen := make(map[string]struct{}, len(o))
	for _, name := range order {
		value, ok := o[name]
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		values = append(values, OptionValue{Name: value, OptionName: name})
	}
	for _, name := range o.Keys() {
		if _, ok := seen[name]; ok {
			continue
		}
		values = append(values, OptionValue{Name: o[name], OptionName: name})
	}
	return values
}

// VariantSpec вариант товара, который запросил вызывающий
type VariantSpec struct {
	Options           OptionAssignments `json:"options"`
	Price             decimal.Decimal   `json:"price"`
	SKU               string            `json:"sku"`
	InventoryQuantity int               `json:"inventory_quantity"`
}

// ImageSpec изображение товара
type ImageSpec struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// ProductSpec нормализованное описание создаваемого товара
type ProductSpec struct {
	Title           string        `json:"title"`
	DescriptionHTML string        `json:"description"`
	Vendor          string        `json:"vendor"`
	ProductType     string        `json:"product_type"`
	Status          ProductStatus `json:"status"`
	Options         []OptionSpec  `json:"options"`
	Variants        []VariantSpec `json:"variants"`
	Images          []ImageSpec   `json:"images,omitempty"`
}

// OptionNames возвращает имена опций в объявленном порядке
func (p *ProductSpec) OptionNames() []string {
	names := make([]string, 0, len(p.Options))
	for _, opt := range p.Options {
		names = append(names, opt.Name)
	}
	return names
}

// ReconciliationResult результат сопоставления запрошенных вариантов
// с вариантом по умолчанию, который Shopify создал вместе с товаром
type ReconciliationResult struct {
	Matched   VariantSpec
	Remainder []VariantSpec
}

// ShopCredentials домен магазина и токен Admin API
type ShopCredentials struct {
	Domain      string
	AccessToken string
}
