package models

// Типы ниже заполняются ответами Shopify и только читаются сервисом.

// RemoteProduct товар, созданный в Shopify
type RemoteProduct struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	Options  []RemoteOption  `json:"options"`
	Variants []RemoteVariant `json:"variants"`
}

// RemoteOption опция товара с идентификаторами Shopify
type RemoteOption struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Values       []string            `json:"values"`
	OptionValues []RemoteOptionValue `json:"optionValues"`
}

// RemoteOptionValue значение опции с идентификатором Shopify
type RemoteOptionValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SelectedOption выбранное значение опции у варианта
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RemoteVariant вариант товара в Shopify
type RemoteVariant struct {
	ID              string           `json:"id"`
	SelectedOptions []SelectedOption `json:"selectedOptions"`
	InventoryItemID string           `json:"inventoryItemId"`
}

// Location склад Shopify, на который ставятся остатки
type Location struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"isActive"`
	IsPrimary bool   `json:"isPrimary"`
}

// UserError ошибка валидации, которую Shopify возвращает в теле ответа
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}

// ProductFragment итоговый фрагмент товара, который видит вызывающий
type ProductFragment struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ProductCreateResult ответ мутации productCreate
type ProductCreateResult struct {
	Product    *RemoteProduct
	Locations  []Location
	UserErrors []UserError
}

// CreatedVariant вариант из ответа productVariantsBulkCreate
type CreatedVariant struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VariantsBulkCreateResult ответ мутации productVariantsBulkCreate
type VariantsBulkCreateResult struct {
	Variants   []CreatedVariant
	UserErrors []UserError
}

// InventoryChange изменение остатка из inventoryAdjustmentGroup
type InventoryChange struct {
	Name  string `json:"name"`
	Delta int    `json:"delta"`
}

// InventorySetResult ответ мутации inventorySetQuantities
type InventorySetResult struct {
	Reason     string
	Changes    []InventoryChange
	UserErrors []UserError
}

// VariantsBulkUpdateResult ответ мутации productVariantsBulkUpdate
type VariantsBulkUpdateResult struct {
	Product    *ProductFragment
	UserErrors []UserError
}

// InventoryQuantity остаток для одной единицы учета на одном складе
type InventoryQuantity struct {
	InventoryItemID string
	LocationID      string
	Quantity        int
}

// VariantUpdate обновление существующего варианта Shopify данными из VariantSpec
type VariantUpdate struct {
	VariantID string
	Spec      VariantSpec
}
