package driver

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor - функция-конструктор драйвера.
// Возвращает драйвер, еще не выполнивший handshake.
type Constructor func(cfg Config) (Driver, error)

// Factory - реестр драйверов по имени СУБД
type Factory struct {
	registry map[string]Constructor
	mu       sync.RWMutex
}

// NewFactory создает пустую фабрику
func NewFactory() *Factory {
	return &Factory{
		registry: make(map[string]Constructor),
	}
}

// Register регистрирует конструктор для имени СУБД
func (f *Factory) Register(name string, constructor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[name] = constructor
}

// IsRegistered проверяет регистрацию
func (f *Factory) IsRegistered(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.registry[name]
	return ok
}

// RegisteredNames возвращает отсортированный список зарегистрированных имен
func (f *Factory) RegisteredNames() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.registry))
	for name := range f.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New создает драйвер без подключения.
// Подключением владеет conn.Manager.
func (f *Factory) New(name string, cfg Config) (Driver, error) {
	f.mu.RLock()
	constructor, ok := f.registry[name]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown database driver: %s (available: %v)", name, f.RegisteredNames())
	}

	return constructor(cfg)
}

// ========== Global Factory ==========

var globalFactory = NewFactory()

// Register регистрирует драйвер в глобальной фабрике.
// Обычно вызывается из init() пакетов драйверов:
//
//	func init() {
//	    driver.Register("mysql", New)
//	}
func Register(name string, constructor Constructor) {
	globalFactory.Register(name, constructor)
}

// IsRegistered проверяет регистрацию в глобальной фабрике
func IsRegistered(name string) bool {
	return globalFactory.IsRegistered(name)
}

// RegisteredNames возвращает имена из глобальной фабрики
func RegisteredNames() []string {
	return globalFactory.RegisteredNames()
}

// New создает драйвер через глобальную фабрику
func New(name string, cfg Config) (Driver, error) {
	return globalFactory.New(name, cfg)
}
