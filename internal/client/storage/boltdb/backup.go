package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

// Методы ниже реализуют autosave.BlobStore поверх bucket "backup".
// Отсутствующий ключ — это (nil, nil), а не ошибка: движок автосохранения
// трактует nil как "бэкапа нет".

// Get возвращает значение по ключу или (nil, nil) если ключ отсутствует
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBackup)
		if bucket == nil {
			return fmt.Errorf("backup bucket not found")
		}

		if data := bucket.Get([]byte(key)); data != nil {
			// Копируем: данные bolt валидны только внутри транзакции
			value = make([]byte, len(data))
			copy(value, data)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Put сохраняет значение по ключу, перезаписывая существующее
func (s *Storage) Put(ctx context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBackup)
		if bucket == nil {
			return fmt.Errorf("backup bucket not found")
		}

		if err := bucket.Put([]byte(key), value); err != nil {
			return fmt.Errorf("failed to save backup: %w", err)
		}

		return nil
	})
}

// Delete удаляет ключ; отсутствие ключа не является ошибкой
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketBackup)
		if bucket == nil {
			return fmt.Errorf("backup bucket not found")
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete backup: %w", err)
		}

		return nil
	})
}
