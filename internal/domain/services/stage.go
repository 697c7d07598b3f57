package services

// Stage состояние оркестрации создания товара
type Stage string

const (
	StageCreated             Stage = "created"
	StageProductCreated      Stage = "product_created"
	StageReconciled          Stage = "reconciled"
	StageVariantsBulkCreated Stage = "variants_bulk_created"
	StageInventorySet        Stage = "inventory_set"
	StageVariantUpdated      Stage = "variant_updated"
	StageFailed              Stage = "failed"
)

func (s Stage) String() string { return string(s) }

// next возвращает состояние, в которое переходит успешный шаг
func (s Stage) next() Stage {
	switch s {
	case StageCreated:
		return StageProductCreated
	case StageProductCreated:
		return StageReconciled
	case StageReconciled:
		return StageVariantsBulkCreated
	case StageVariantsBulkCreated:
		return StageInventorySet
	case StageInventorySet:
		return StageVariantUpdated
	}
	return s
}

// Terminal сообщает, завершена ли оркестрация
func (s Stage) Terminal() bool {
	return s == StageVariantUpdated || s == StageFailed
}
