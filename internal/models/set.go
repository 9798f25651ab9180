package models

import (
	"slices"
	"strings"
)

// NormalizeSet обрезает пробелы, убирает пустые значения и дубликаты, сортирует
func NormalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// SetAdd добавляет значение в отсортированное множество; второй результат - было ли изменение
func SetAdd(set []string, value string) ([]string, bool) {
	idx, found := slices.BinarySearch(set, value)
	if found {
		return set, false
	}
	return slices.Insert(slices.Clone(set), idx, value), true
}

// SetRemove удаляет значение из отсортированного множества
func SetRemove(set []string, value string) ([]string, bool) {
	idx, found := slices.BinarySearch(set, value)
	if !found {
		return set, false
	}
	return slices.Delete(slices.Clone(set), idx, idx+1), true
}

// Intersects сообщает, есть ли у множеств общий элемент
func Intersects(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}
