package recordstore

import (
	"bytes"
	"encoding/json"

	"github.com/masomo/planner/core"
)

// request payloads, shaped after the hosted service's SDK params

type (
	fieldName struct {
		Name string `json:"Name"`
	}

	fieldSpec struct {
		Field fieldName `json:"field"`
	}

	whereSpec struct {
		FieldName string        `json:"FieldName"`
		Operator  string        `json:"Operator"`
		Values    []interface{} `json:"Values"`
	}

	orderSpec struct {
		FieldName string `json:"fieldName"`
		SortType  string `json:"sorttype"`
	}

	pagingSpec struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}

	queryParams struct {
		Fields     []fieldSpec `json:"fields,omitempty"`
		Where      []whereSpec `json:"where,omitempty"`
		OrderBy    []orderSpec `json:"orderBy,omitempty"`
		PagingInfo *pagingSpec `json:"pagingInfo,omitempty"`
	}

	mutationParams struct {
		Records []core.Record `json:"records"`
	}

	deleteParams struct {
		RecordIds []int `json:"RecordIds"`
	}
)

// response envelope

type (
	envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
		Results []result        `json:"results"`
	}

	result struct {
		Success bool        `json:"success"`
		Data    core.Record `json:"data"`
		Message string      `json:"message"`
	}
)

func newQueryParams(q core.Query) queryParams {
	var params queryParams
	for _, f := range q.Fields {
		params.Fields = append(params.Fields, fieldSpec{Field: fieldName{Name: f}})
	}
	for _, cond := range q.Where {
		params.Where = append(params.Where, whereSpec{
			FieldName: cond.FieldName,
			Operator:  cond.Operator,
			Values:    cond.Values,
		})
	}
	for _, ord := range q.OrderBy {
		sortType := "DESC"
		if ord.Ascending {
			sortType = "ASC"
		}
		params.OrderBy = append(params.OrderBy, orderSpec{FieldName: ord.Field, SortType: sortType})
	}
	if q.Paging != nil {
		params.PagingInfo = &pagingSpec{Limit: q.Paging.Limit, Offset: q.Paging.Offset}
	}
	return params
}

func (env envelope) results() []core.RecordResult {
	results := make([]core.RecordResult, 0, len(env.Results))
	for _, res := range env.Results {
		results = append(results, core.RecordResult{Success: res.Success, Data: res.Data, Message: res.Message})
	}
	return results
}

// decodeJSON keeps numbers as json.Number so that integer ids survive.
func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// isNull reports whether raw is empty or the JSON null literal.
func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
