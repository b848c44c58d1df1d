package domain

var (
	MessageSuccessGetCategories  = "success get categories"
	MessageSuccessGetAreas       = "success get areas"
	MessageSuccessGetIngredients = "success get ingredients"

	MessageFailedGetCategories  = "failed to get categories"
	MessageFailedGetAreas       = "failed to get areas"
	MessageFailedGetIngredients = "failed to get ingredients"
)

type (
	CategoryResponse struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Image       *string `json:"image"`
		Description string  `json:"description"`
	}

	AreaResponse struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	IngredientResponse struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Img         *string `json:"img"`
	}
)
