/*
Package models - Payroll Engine Data Models

==============================================================================
FILE: internal/models/base.go
==============================================================================

DESCRIPTION:
    Defines the BaseModel struct that provides common fields (ID,
    timestamps) for all database models in the payroll engine. Every other
    model embeds this base model.

    There is deliberately NO GORM soft delete here. Payroll data is
    audit-bearing: a row silently filtered out of queries by a deleted_at
    column would punch a hole in a snapshot's explain-every-rupee
    guarantee. Where this domain needs a "gone but kept" state it models
    the latch explicitly - Employee.ExitDate, Holiday.IsActive,
    SalaryHold.IsReleased - and every query stays a plain query.

DEVELOPER GUIDELINES:
    All models MUST embed BaseModel as the first field
    DO NOT add gorm.DeletedAt back; model lifecycle with an explicit
    column on the entity that owns it instead

SYNTAX EXPLANATION:
    - uuid.UUID: Universally Unique Identifier, 128-bit identifier
    - `gorm:"..."`: GORM ORM tags for database column configuration
    - `json:"..."`: JSON serialization tags for API responses
    - BeforeCreate(): GORM hook called automatically before INSERT operations

DATABASE IMPACT:
    These fields are added to every table:
    - id (TEXT): Primary key, UUID format
    - created_at (DATETIME): Auto-set on INSERT
    - updated_at (DATETIME): Auto-updated on UPDATE

==============================================================================
*/
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides common fields for all models.
// All models in the system MUST embed this struct to ensure consistent
// ID generation and timestamps.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate generates a new UUID for the ID field if it's not already set.
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}
