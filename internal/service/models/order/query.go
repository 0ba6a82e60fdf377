package order

import "time"

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids       []int64    `json:"ids,omitempty"`
	BuyerIds  []int64    `json:"buyerIds,omitempty"`
	SellerID  int64      `json:"sellerId,omitempty"`
	Status    Status     `json:"status,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	SortBy    string     `json:"sortBy,omitempty"`
	SortDesc  bool       `json:"sortDesc,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}
