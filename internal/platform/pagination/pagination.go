// Package pagination はゼロ始まりのページ指定とページ付きレスポンスを提供します。
package pagination

import (
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"
)

const (
	// DefaultSize は size 未指定時の件数です。
	DefaultSize = 10
	// MaxSize は1ページの最大件数です。
	MaxSize = 100
)

// Request はページ指定です。Page はゼロ始まりです。
type Request struct {
	Page int
	Size int
}

// Offset はSQLのOFFSETを返します。
func (r Request) Offset() int {
	return r.Page * r.Size
}

// Normalize は範囲外の値を補正します。
// 負のページは0、1未満のサイズはDefaultSize、MaxSizeを超えるサイズはMaxSizeになります。
func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	switch {
	case r.Size < 1:
		r.Size = DefaultSize
	case r.Size > MaxSize:
		r.Size = MaxSize
	}
	return r
}

// ParamError は整数として解釈できなかったクエリパラメータを表します。
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Param, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// FromQuery は page と size のクエリパラメータを読み取ります。
// 整数でない値は *ParamError になります。
func FromQuery(q url.Values) (Request, error) {
	var page, size *int
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		return Request{}, &ParamError{Param: "page", Err: err}
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", q, &size); err != nil {
		return Request{}, &ParamError{Param: "size", Err: err}
	}

	req := Request{Size: DefaultSize}
	if page != nil {
		req.Page = *page
	}
	if size != nil {
		req.Size = *size
	}
	return req.Normalize(), nil
}

// Pageable はレスポンスに含めるページ指定です。
type Pageable struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	Offset     int `json:"offset"`
}

// Page はページ付きレスポンスです。
type Page[T any] struct {
	Content          []T      `json:"content"`
	Pageable         Pageable `json:"pageable"`
	TotalPages       int      `json:"totalPages"`
	TotalElements    int64    `json:"totalElements"`
	Size             int      `json:"size"`
	Number           int      `json:"number"`
	NumberOfElements int      `json:"numberOfElements"`
	First            bool     `json:"first"`
	Last             bool     `json:"last"`
	Empty            bool     `json:"empty"`
}

// New はcontentと総件数からPageを組み立てます。
func New[T any](content []T, req Request, total int64) Page[T] {
	req = req.Normalize()
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content: content,
		Pageable: Pageable{
			PageNumber: req.Page,
			PageSize:   req.Size,
			Offset:     req.Offset(),
		},
		TotalPages:       totalPages,
		TotalElements:    total,
		Size:             req.Size,
		Number:           req.Page,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}

// Map はPageの要素を変換します。
func Map[T, U any](p Page[T], f func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, v := range p.Content {
		out = append(out, f(v))
	}
	return Page[U]{
		Content:          out,
		Pageable:         p.Pageable,
		TotalPages:       p.TotalPages,
		TotalElements:    p.TotalElements,
		Size:             p.Size,
		Number:           p.Number,
		NumberOfElements: p.NumberOfElements,
		First:            p.First,
		Last:             p.Last,
		Empty:            p.Empty,
	}
}
