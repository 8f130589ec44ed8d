package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-emsforms/pkg/model"
)

const employeesPath = "employees/"

type employeeStore struct{ c *Client }

type employeeList []model.EmployeeRecord

func (l *employeeList) UnmarshalJSON(data []byte) error {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		var records []model.EmployeeRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return err
		}
		*l = records
		return nil
	}
	var page struct {
		Results []model.EmployeeRecord `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	*l = page.Results
	return nil
}

func (e employeeStore) List(ctx context.Context) ([]model.Employee, error) {
	var records employeeList
	if err := e.c.do(ctx, http.MethodGet, employeesPath, nil, nil, &records); err != nil {
		return nil, err
	}
	out := make([]model.Employee, 0, len(records))
	for _, record := range records {
		out = append(out, record.Employee())
	}
	return out, nil
}

func (e employeeStore) Get(ctx context.Context, id int64) (model.Employee, error) {
	return e.one(ctx, http.MethodGet, employeePath(id), nil)
}

func (e employeeStore) Create(ctx context.Context, submission model.EmployeeSubmission) (model.Employee, error) {
	return e.one(ctx, http.MethodPost, employeesPath, submission)
}

func (e employeeStore) Update(ctx context.Context, id int64, submission model.EmployeeSubmission) (model.Employee, error) {
	return e.one(ctx, http.MethodPut, employeePath(id), submission)
}

func (e employeeStore) Delete(ctx context.Context, id int64) error {
	return e.c.do(ctx, http.MethodDelete, employeePath(id), nil, nil, nil)
}

func (e employeeStore) one(ctx context.Context, method, path string, body any) (model.Employee, error) {
	var record model.EmployeeRecord
	if err := e.c.do(ctx, method, path, nil, body, &record); err != nil {
		return model.Employee{}, err
	}
	return record.Employee(), nil
}

func employeePath(id int64) string {
	return fmt.Sprintf("%s%d/", employeesPath, id)
}
