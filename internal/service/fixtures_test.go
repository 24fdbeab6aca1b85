package service

import (
	"context"
	"sync"

	"kavak-agent/internal/model"
)

func fixtureItems() []model.CatalogItem {
	return []model.CatalogItem{
		{ID: "322722", Brand: "Nissan", Model: "Versa", Version: "Sense", Year: 2020, Km: 45837, Price: 265999},
		{ID: "322723", Brand: "Nissan", Model: "Versa", Version: "Advance", Year: 2021, Km: 30000, Price: 289000},
		{ID: "322724", Brand: "Nissan", Model: "Versa", Version: "Sense", Year: 2019, Km: 60000, Price: 239000},
		{ID: "322725", Brand: "Nissan", Model: "Versa", Version: "Exclusive", Year: 2020, Km: 50000, Price: 299000},
		{ID: "322726", Brand: "Nissan", Model: "Versa", Version: "Advance", Year: 2018, Km: 80000, Price: 215000},
		{ID: "322727", Brand: "Nissan", Model: "Versa", Version: "Sense", Year: 2022, Km: 15000, Price: 319000},
		{ID: "322728", Brand: "Nissan", Model: "Versa", Version: "Sense", Year: 2020, Km: 90000, Price: 249000},
		{ID: "322729", Brand: "Nissan", Model: "Versa", Version: "Advance", Year: 2020, Km: 52000, Price: 259000},
		{ID: "322730", Brand: "Nissan", Model: "Versa", Version: "Sense", Year: 2021, Km: 41000, Price: 279000},
		{ID: "322731", Brand: "Nissan", Model: "Versa", Version: "Advance", Year: 2020, Km: 66000, Price: 262000},
		{ID: "322732", Brand: "Nissan", Model: "Versa", Version: "Sense", Year: 2023, Km: 12000, Price: 298000},
		{ID: "330001", Brand: "Nissan", Model: "Sentra", Version: "Advance", Year: 2021, Km: 25000, Price: 270000},
		{ID: "330002", Brand: "Nissan", Model: "Sentra", Version: "Exclusive", Year: 2019, Km: 70000, Price: 255000},
		{ID: "330010", Brand: "Nissan", Model: "Kicks", Version: "Sense", Year: 2022, Km: 10000, Price: 340000},
		{ID: "330020", Brand: "Nissan", Model: "X-Trail", Version: "Exclusive", Year: 2019, Km: 75000, Price: 365000},
		{ID: "340001", Brand: "Toyota", Model: "Corolla", Version: "LE", Year: 2020, Km: 40000, Price: 310000},
		{ID: "340002", Brand: "Toyota", Model: "Corolla", Version: "XLE", Year: 2021, Km: 20000, Price: 360000},
		{ID: "340010", Brand: "Toyota", Model: "Yaris", Version: "S", Year: 2019, Km: 50000, Price: 230000},
		{ID: "350001", Brand: "Volkswagen", Model: "Jetta", Version: "Trendline", Year: 2019, Km: 55000, Price: 280000},
		{ID: "350002", Brand: "Volkswagen", Model: "Jetta", Version: "Highline", Year: 2021, Km: 30000, Price: 345000},
		{ID: "360001", Brand: "Chevrolet", Model: "Aveo", Version: "LT", Year: 2020, Km: 35000, Price: 210000},
		{ID: "370001", Brand: "Mercedes Benz", Model: "Clase A", Version: "", Year: 2019, Km: 48000, Price: 420000},
	}
}

func fixtureCatalog() *Catalog {
	return NewCatalog(fixtureItems())
}

func fixtureResolver() *Resolver {
	return NewResolver(fixtureCatalog().Vocabulary(), DefaultAliases(), DefaultMatchThresholds())
}

// memStore is a minimal StateStore for tests.
type memStore struct {
	mu    sync.Mutex
	convs map[string]*model.ConversationContext
	err   error
}

func newMemStore() *memStore {
	return &memStore{convs: map[string]*model.ConversationContext{}}
}

func (m *memStore) Get(_ context.Context, ch string) (*model.ConversationContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.convs[ch]; ok {
		return c.Clone(), nil
	}
	return model.NewConversationContext(ch), nil
}

func (m *memStore) Update(_ context.Context, ch string, fn func(*model.ConversationContext) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	c, ok := m.convs[ch]
	if !ok {
		c = model.NewConversationContext(ch)
	}
	work := c.Clone()
	if err := fn(work); err != nil {
		return err
	}
	m.convs[ch] = work
	return nil
}
