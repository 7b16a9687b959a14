// Package autosave реализует клиентский движок автосохранения черновиков:
// машину состояний сохранения с debounce, retry с экспоненциальным
// расписанием, offline-обработкой, подавлением конкурентных записей,
// circuit breaker'ом и локальным бэкапом для восстановления после сбоя.
//
// Ядро не владеет сетью, хранилищем и уведомлениями — все три приходят
// коллабораторами (Saver, BlobStore, Notifier), что позволяет держать
// несколько независимых инстансов и детерминированно тестировать движок.
package autosave
