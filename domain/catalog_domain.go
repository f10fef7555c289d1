package domain

import (
	"errors"
)

var (
	MessageSuccessGetIngredients = "success get ingredients"
	MessageSuccessGetIngredient  = "success get ingredient detail"
	MessageSuccessGetTags        = "success get tags"
	MessageSuccessGetTag         = "success get tag detail"

	MessageFailedGetIngredients = "failed to get ingredients"
	MessageFailedGetIngredient  = "failed to get ingredient detail"
	MessageFailedGetTags        = "failed to get tags"
	MessageFailedGetTag         = "failed to get tag detail"

	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrTagNotFound        = errors.New("tag does not exist")
)

type (
	IngredientResponse struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	TagResponse struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}
)
