package model

import "time"

// Capabilities are the three booleans every grant row carries.
type Capabilities struct {
	CanView   bool `json:"canView"`
	CanCreate bool `json:"canCreate"`
	CanEdit   bool `json:"canEdit"`
}

type CollectionGrant struct {
	UserID       int64 `json:"userId"`
	CollectionID int64 `json:"collectionId"`
	Capabilities
	UpdatedAt time.Time `json:"updatedAt"`
}

type ItemGrant struct {
	UserID       int64 `json:"userId"`
	ItemID       int64 `json:"itemId"`
	CollectionID int64 `json:"collectionId"`
	Capabilities
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot returns a copy of the grant's capabilities, or nil when there is no grant.
func (g *CollectionGrant) Snapshot() *Capabilities {
	if g == nil {
		return nil
	}
	c := g.Capabilities
	return &c
}

// Snapshot returns a copy of the grant's capabilities, or nil when there is no grant.
func (g *ItemGrant) Snapshot() *Capabilities {
	if g == nil {
		return nil
	}
	c := g.Capabilities
	return &c
}

type GrantSet struct {
	Collections []CollectionGrant `json:"collections"`
	Items       []ItemGrant       `json:"items"`
}
