package model

// Feed is the unauthenticated public view of the feed owner.
type Feed struct {
	Status StatusView `json:"status"`
	Posts  []Post     `json:"posts"`
	Tasks  []Task     `json:"tasks"`
}
