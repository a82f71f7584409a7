package country

import (
	"errors"
	"fmt"
)

// ErrCountryNotFound 国家记录不存在
var ErrCountryNotFound = errors.New("country not found")

// StorageError 存储操作失败，调用方只应返回通用错误，不暴露细节
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作失败 [%s]: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
