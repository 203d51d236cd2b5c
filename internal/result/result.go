// Package result содержит двухвариантный контейнер для операций, которые могут завершиться ошибкой.
package result

import "fmt"

// Result хранит либо значение, либо ошибку, но никогда оба сразу.
type Result[T any] struct {
	value T
	err   error
}

// Ok создает успешный результат
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err создает результат с ошибкой. nil-ошибка недопустима.
func Err[T any](err error) Result[T] {
	if err == nil {
		panic("result: Err called with nil error")
	}
	return Result[T]{err: err}
}

// From превращает привычную пару (значение, ошибка) в Result
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Result[T]{err: err}
	}
	return Ok(value)
}

func (r Result[T]) IsOk() bool {
	return r.err == nil
}

func (r Result[T]) IsErr() bool {
	return r.err != nil
}

// Value возвращает значение. Вызов на результате с ошибкой - это баг вызывающего кода.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic(fmt.Sprintf("result: Value called on error result: %v", r.err))
	}
	return r.value
}

// Err возвращает ошибку или nil
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap возвращает пару в стиле Go
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// Map применяет f к значению, ошибка проходит без изменений
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Ok(f(r.value))
}

// Then связывает шаги, каждый из которых может завершиться ошибкой
func Then[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return f(r.value)
}

// MapErr позволяет слою добавить контекст к ошибке, не теряя исходную
func MapErr[T any](r Result[T], f func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Result[T]{err: f(r.err)}
}
