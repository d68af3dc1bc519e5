package model

import "time"

// Collection is a top-level grouping such as a canton.
type Collection struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Item belongs to exactly one collection; Kind distinguishes judges, persons, documents.
type Item struct {
	ID           int64     `json:"id"`
	CollectionID int64     `json:"collectionId"`
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	CreatedBy    int64     `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var ItemKinds = map[string]struct{}{
	"judge":    {},
	"person":   {},
	"document": {},
}
