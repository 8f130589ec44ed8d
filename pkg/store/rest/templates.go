package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
	"github.com/goliatone/go-emsforms/pkg/store"
)

const formsPath = "forms/"

type templateStore struct{ c *Client }

// templateList accepts both a bare array and a paginated {"results": [...]}
// envelope.
type templateList []model.TemplateRecord

func (l *templateList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var records []model.TemplateRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return err
		}
		*l = records
		return nil
	}
	var page struct {
		Results []model.TemplateRecord `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	*l = page.Results
	return nil
}

func (t templateStore) List(ctx context.Context, filter store.ListFilter) ([]model.FormTemplate, error) {
	query := url.Values{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query.Set("search", search)
	}
	if filter.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*filter.IsActive))
	}

	var records templateList
	if err := t.c.do(ctx, http.MethodGet, formsPath, query, nil, &records); err != nil {
		return nil, err
	}
	out := make([]model.FormTemplate, 0, len(records))
	for _, record := range records {
		out = append(out, record.Template())
	}
	return out, nil
}

func (t templateStore) Get(ctx context.Context, id int64) (model.FormTemplate, error) {
	return t.one(ctx, http.MethodGet, templatePath(id, ""), nil)
}

func (t templateStore) Create(ctx context.Context, payload model.TemplatePayload) (model.FormTemplate, error) {
	return t.one(ctx, http.MethodPost, formsPath, payload)
}

func (t templateStore) Update(ctx context.Context, id int64, payload model.TemplatePayload) (model.FormTemplate, error) {
	return t.one(ctx, http.MethodPut, templatePath(id, ""), payload)
}

func (t templateStore) Delete(ctx context.Context, id int64) error {
	return t.c.do(ctx, http.MethodDelete, templatePath(id, ""), nil, nil, nil)
}

func (t templateStore) Duplicate(ctx context.Context, id int64) (model.FormTemplate, error) {
	return t.one(ctx, http.MethodPost, templatePath(id, "duplicate/"), nil)
}

func (t templateStore) one(ctx context.Context, method, path string, body any) (model.FormTemplate, error) {
	var record model.TemplateRecord
	if err := t.c.do(ctx, method, path, nil, body, &record); err != nil {
		return model.FormTemplate{}, err
	}
	return record.Template(), nil
}

func templatePath(id int64, suffix string) string {
	return fmt.Sprintf("%s%d/%s", formsPath, id, suffix)
}
