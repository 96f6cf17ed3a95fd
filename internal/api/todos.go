package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/clive/todo-tui/internal/model"
)

// ListTodosParams selects a page of todos
type ListTodosParams struct {
	Page   int // 1-based, defaults to 1
	Search string
}

func (p ListTodosParams) path() string {
	page := p.Page
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("search", p.Search)
	return "todos/?" + q.Encode()
}

// ListTodos returns one page of todos
func (c *Client) ListTodos(ctx context.Context, params ListTodosParams) (*model.TodoPage, error) {
	var page model.TodoPage
	if err := c.Do(ctx, http.MethodGet, params.path(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateTodo adds a todo
func (c *Client) CreateTodo(ctx context.Context, input model.TodoInput) (*model.Todo, error) {
	var todo model.Todo
	if err := c.Do(ctx, http.MethodPost, "todos/", input, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo patches a todo
func (c *Client) UpdateTodo(ctx context.Context, id int, patch model.TodoPatch) (*model.Todo, error) {
	var todo model.Todo
	if err := c.Do(ctx, http.MethodPatch, fmt.Sprintf("todos/%d/", id), patch, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo removes a todo
func (c *Client) DeleteTodo(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("todos/%d/", id), nil, nil)
}
