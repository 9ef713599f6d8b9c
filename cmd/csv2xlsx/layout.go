package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/olekukonko/errors"
	"gopkg.in/yaml.v3"

	"github.com/aerissecure/xlsxwriter/worksheet"
)

// layout describes how the CSV data is presented. It is read from the YAML
// file given with -c.
type layout struct {
	Sheet   string         `yaml:"sheet" validate:"omitempty,max=31"`
	Header  *headerLayout  `yaml:"header"`
	Columns []columnLayout `yaml:"columns" validate:"dive"`
}

// headerLayout styles the first CSV record.
type headerLayout struct {
	Bold   bool    `yaml:"bold"`
	Fill   string  `yaml:"fill" validate:"omitempty,len=6,hexadecimal"`
	Height float64 `yaml:"height" validate:"gte=0,lte=409"`
}

type columnLayout struct {
	Range     string  `yaml:"range" validate:"required,columns"`
	Width     float64 `yaml:"width" validate:"gte=0,lte=255"`
	NumFormat string  `yaml:"num_format" validate:"max=255"`
	Hidden    bool    `yaml:"hidden"`
	Bold      bool    `yaml:"bold"`
}

var errLayout = errors.Named("LayoutError")

func newValidator() *validator.Validate {
	v := validator.New()
	// "B:D" or a single column "C"
	v.RegisterValidation("columns", func(fl validator.FieldLevel) bool {
		_, _, err := parseRange(fl.Field().String())
		return err == nil
	})
	return v
}

// parseRange accepts "B:D" and the single column form "C".
func parseRange(s string) (first, last int, err error) {
	if !strings.Contains(s, ":") {
		s = s + ":" + s
	}
	return worksheet.ParseColumns(s)
}

// loadLayout reads and validates the layout file. Every problem is reported
// as errLayout so the caller can tell it apart from I/O failures during the
// conversion.
func loadLayout(path string) (*layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Newf("read layout %s", path).WithName(errLayout.Name()).Wrap(err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var l layout
	if err := dec.Decode(&l); err != nil && err != io.EOF {
		return nil, errors.Newf("parse layout %s", path).WithName(errLayout.Name()).Wrap(err)
	}
	if err := newValidator().Struct(&l); err != nil {
		return nil, errors.Newf("invalid layout %s: %s", path, describe(err)).WithName(errLayout.Name())
	}
	return &l, nil
}

// describe flattens validator errors into one line, naming the YAML path of
// every failing field.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "layout.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed on '%s=%s'", field, fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", field, fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
