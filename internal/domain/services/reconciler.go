package services

import (
	"fmt"

	"github.com/athebyme/shopify-product-service/internal/domain/models"
)

// DefaultOptionsOf строит карту опция -> значение для варианта,
// который Shopify создал вместе с товаром
func DefaultOptionsOf(variant models.RemoteVariant) (models.OptionAssignments, error) {
	if len(variant.SelectedOptions) == 0 {
		return nil, &RemoteResponseError{Stage: StageReconciled, Reason: "default variant has no selected options"}
	}

	options := make(models.OptionAssignments, len(variant.SelectedOptions))
	for _, opt := range variant.SelectedOptions {
		name := opt.Name
		if name == "" {
			return nil, &RemoteResponseError{Stage: StageReconciled, Reason: "default variant has an unnamed option"}
		}
		if _, dup := options[name]; dup {
			return nil, &RemoteResponseError{Stage: StageReconciled, Reason: fmt.Sprintf("default variant repeats option %q", name)}
		}
		options[name] = opt.Value
	}
	return options, nil
}

// SplitVariants делит запрошенные варианты на совпавший с вариантом по умолчанию
// и остальные. Первое совпадение становится Matched, порядок Remainder
// повторяет порядок входа.
func SplitVariants(requested []models.VariantSpec, defaultOptions models.OptionAssignments) (models.ReconciliationResult, error) {
	var (
		result models.ReconciliationResult
		found  bool
	)
	result.Remainder = make([]models.VariantSpec, 0, len(requested))

	for _, variant := range requested {
		if !found && variant.Options.Equal(defaultOptions) {
			result.Matched = variant
			found = true
			continue
		}
		result.Remainder = append(result.Remainder, variant)
	}

	if !found {
		return models.ReconciliationResult{}, &ReconciliationError{DefaultOptions: defaultOptions}
	}
	return result, nil
}
