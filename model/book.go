/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package model

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/recordstore/codec"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/registry"
	"github.com/suparena/recordstore/storagemodels"
)

// Book table layout.
const (
	BookTable         = "Book"
	IsbnColumn        = "Isbn"
	NameColumn        = "Name"
	DescriptionColumn = "Description"
	bookRecordName    = "Book"
)

// Book is keyed by its ISBN.
type Book struct {
	Isbn        string `json:"isbn" dynamodbav:"Isbn"`
	Name        string `json:"name" dynamodbav:"Name"`
	Description string `json:"description" dynamodbav:"Description"`
}

func init() {
	registry.RegisterSchema[Book](registry.Schema{
		Name:         bookRecordName,
		Table:        BookTable,
		PartitionKey: IsbnColumn,
		Required:     []string{IsbnColumn, NameColumn, DescriptionColumn},
	})
}

// NewBook builds a Book, failing if any field is empty.
func NewBook(isbn, name, description string) (Book, error) {
	b := Book{Isbn: isbn, Name: name, Description: description}
	if err := b.Validate(); err != nil {
		return Book{}, err
	}
	return b, nil
}

// Validate reports the first empty field.
func (b Book) Validate() error {
	switch {
	case b.Isbn == "":
		return errors.NewMissingFieldError(bookRecordName, IsbnColumn)
	case b.Name == "":
		return errors.NewMissingFieldError(bookRecordName, NameColumn)
	case b.Description == "":
		return errors.NewMissingFieldError(bookRecordName, DescriptionColumn)
	}
	return nil
}

// Key returns the primary key of b.
func (b Book) Key() storagemodels.PrimaryKey {
	return storagemodels.PrimaryKey{PartitionValue: b.Isbn}
}

// BookCodec is the hand-written Codec for Book.
type BookCodec struct{}

var _ codec.Codec[Book] = BookCodec{}

// Decode implements codec.Codec.
func (BookCodec) Decode(item map[string]types.AttributeValue) (Book, error) {
	if len(item) == 0 {
		return Book{}, errors.NewMissingFieldError(bookRecordName, "")
	}
	isbn, err := codec.String(bookRecordName, item, IsbnColumn)
	if err != nil {
		return Book{}, err
	}
	name, err := codec.String(bookRecordName, item, NameColumn)
	if err != nil {
		return Book{}, err
	}
	description, err := codec.String(bookRecordName, item, DescriptionColumn)
	if err != nil {
		return Book{}, err
	}
	return Book{Isbn: isbn, Name: name, Description: description}, nil
}

// Encode implements codec.Codec.
func (BookCodec) Encode(b Book) (map[string]types.AttributeValue, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		IsbnColumn:        codec.StringValue(b.Isbn),
		NameColumn:        codec.StringValue(b.Name),
		DescriptionColumn: codec.StringValue(b.Description),
	}, nil
}
