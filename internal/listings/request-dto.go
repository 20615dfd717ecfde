package listings

type CreateListingRequest struct {
	Title          string `json:"title" binding:"required,min=3,max=200"`
	Description    string `json:"description" binding:"required,min=10"`
	Category       string `json:"category" binding:"required"`
	City           string `json:"city" binding:"omitempty,max=100"`
	DailyPrice     string `json:"daily_price" binding:"required"`
	Deposit        string `json:"deposit" binding:"omitempty"`
}

type UpdateListingRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=3,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,min=10"`
	Category    *string `json:"category,omitempty"`
	City        *string `json:"city,omitempty" binding:"omitempty,max=100"`
	DailyPrice  *string `json:"daily_price,omitempty"`
	Deposit     *string `json:"deposit,omitempty"`
}

type ListingListQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	City     string `form:"city"`
	Query    string `form:"q"`
	MaxPrice string `form:"max_price"`
	OwnerID  string `form:"owner_id"`
}
