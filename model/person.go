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

// Person table layout.
const (
	PersonTable      = "person"
	FirstNameColumn  = "firstName"
	LastNameColumn   = "lastName"
	CpfColumn        = "cpf"
	CpfIndex         = "cpf_index"
	personRecordName = "Person"
)

// Person is keyed by first and last name and indexed by cpf.
type Person struct {
	FirstName string `json:"firstName" dynamodbav:"firstName"`
	LastName  string `json:"lastName" dynamodbav:"lastName"`
	Cpf       string `json:"cpf" dynamodbav:"cpf"`
}

func init() {
	registry.RegisterSchema[Person](registry.Schema{
		Name:         personRecordName,
		Table:        PersonTable,
		PartitionKey: FirstNameColumn,
		SortKey:      LastNameColumn,
		Indexes:      map[string]string{CpfIndex: CpfColumn},
		Required:     []string{FirstNameColumn, LastNameColumn, CpfColumn},
	})
}

// NewPerson builds a Person, failing if any field is empty.
func NewPerson(firstName, lastName, cpf string) (Person, error) {
	p := Person{FirstName: firstName, LastName: lastName, Cpf: cpf}
	if err := p.Validate(); err != nil {
		return Person{}, err
	}
	return p, nil
}

// Validate reports the first empty field.
func (p Person) Validate() error {
	switch {
	case p.FirstName == "":
		return errors.NewMissingFieldError(personRecordName, FirstNameColumn)
	case p.LastName == "":
		return errors.NewMissingFieldError(personRecordName, LastNameColumn)
	case p.Cpf == "":
		return errors.NewMissingFieldError(personRecordName, CpfColumn)
	}
	return nil
}

// Key returns the primary key of p.
func (p Person) Key() storagemodels.PrimaryKey {
	return storagemodels.PrimaryKey{PartitionValue: p.FirstName, SortValue: p.LastName}
}

// PersonCpf reads the cpf_index key of p.
func PersonCpf(index string, p Person) (string, bool) {
	return p.Cpf, index == CpfIndex
}

// PersonCodec is the hand-written Codec for Person.
type PersonCodec struct{}

var _ codec.Codec[Person] = PersonCodec{}

// Decode implements codec.Codec.
func (PersonCodec) Decode(item map[string]types.AttributeValue) (Person, error) {
	if len(item) == 0 {
		return Person{}, errors.NewMissingFieldError(personRecordName, "")
	}
	firstName, err := codec.String(personRecordName, item, FirstNameColumn)
	if err != nil {
		return Person{}, err
	}
	lastName, err := codec.String(personRecordName, item, LastNameColumn)
	if err != nil {
		return Person{}, err
	}
	cpf, err := codec.String(personRecordName, item, CpfColumn)
	if err != nil {
		return Person{}, err
	}
	return Person{FirstName: firstName, LastName: lastName, Cpf: cpf}, nil
}

// Encode implements codec.Codec.
func (PersonCodec) Encode(p Person) (map[string]types.AttributeValue, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		FirstNameColumn: codec.StringValue(p.FirstName),
		LastNameColumn:  codec.StringValue(p.LastName),
		CpfColumn:       codec.StringValue(p.Cpf),
	}, nil
}
