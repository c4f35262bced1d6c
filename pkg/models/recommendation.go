package models

type RecommendationSource string

const (
	SourceContent    RecommendationSource = "content"
	SourcePopularity RecommendationSource = "popularity"
)

// Recommendation is one entry of a hybrid result. Exactly one of SimilarityScore and
// PurchaseCount is set, depending on the tier that produced it.
type Recommendation struct {
	ProductID       int64                `json:"product_id"`
	Name            string               `json:"name"`
	Category        string               `json:"category"`
	SimilarityScore *float64             `json:"similarity_score,omitempty"`
	PurchaseCount   *int                 `json:"purchase_count,omitempty"`
	Source          RecommendationSource `json:"source"`
}

type RecommendationQuery struct {
	UserID    *int64 `form:"user_id" json:"user_id,omitempty"`
	ProductID *int64 `form:"product_id" json:"product_id,omitempty"`
	Count     int    `form:"num_recommendations" json:"num_recommendations" validate:"gt=0"`
}

type ScoredProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"similarity_score"`
}

type PopularProduct struct {
	Product       Product `json:"product"`
	PurchaseCount int     `json:"purchase_count"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
