// Package heropool поддерживает небольшой пул заранее сгенерированных
// hero-картинок лендинга, размазывая дорогие вызовы генератора по множеству
// загрузок страницы.
package heropool

import (
	"context"
	"encoding/json"
	"log"
	"math/rand/v2"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/cache"
	"github.com/wnsghl6272/total-cooked/internal/domain"
)

// Пять фиксированных промптов — разные сцены ради визуального разнообразия.
var heroPrompts = []string{
	"delicious gourmet food spread on elegant table",
	"fresh ingredients and cooking utensils in modern kitchen",
	"colorful healthy meal preparation scene",
	"professional chef cooking in restaurant kitchen",
	"beautiful food photography with natural lighting",
}

// Generator — внешний генератор картинок.
type Generator interface {
	GenerateFoodImage(ctx context.Context, prompt string) (domain.DalleImage, error)
}

type Manager struct {
	cache  *cache.Cache // пространство dalle_cache с TTL пула (30 дней)
	gen    Generator
	logger *log.Logger

	// Пауза между последовательными генерациями — щадим rate limit вендора.
	delay time.Duration

	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration)
	randInt func(n int) int
}

func New(c *cache.Cache, gen Generator, logger *log.Logger) *Manager {
	return &Manager{
		cache:  c,
		gen:    gen,
		logger: logger,
		delay:  time.Second,
		now:    time.Now,
		sleep:  sleepCtx,
		randInt: func(n int) int {
			return rand.IntN(n)
		},
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Pool возвращает пул из кеша. Отсутствующий, протухший или неполный
// (len != 5) пул считается отсутствующим — читатель форсирует регенерацию.
func (m *Manager) Pool(ctx context.Context) (*domain.HeroImagePool, bool) {
	payload, ok := m.cache.Get(ctx, domain.HeroPoolKey)
	if !ok {
		return nil, false
	}

	var pool domain.HeroImagePool
	if err := json.Unmarshal(payload, &pool); err != nil {
		m.logger.Printf("stored pool is malformed, treating as absent: %v", err)
		return nil, false
	}
	if len(pool.Images) != domain.HeroPoolSize {
		m.logger.Printf("stored pool incomplete (%d/%d), treating as absent",
			len(pool.Images), domain.HeroPoolSize)
		return nil, false
	}
	return &pool, true
}

// Generate строит новый пул: генерации строго последовательны с паузой,
// провал отдельного слота логируется и слот пропускается (без ретраев).
// Итог пишется в кеш безусловно, даже неполный: следующий читатель увидит
// неполноту и перегенерирует.
func (m *Manager) Generate(ctx context.Context) *domain.HeroImagePool {
	m.logger.Println("generating new hero image pool...")

	images := make([]domain.DalleImage, 0, domain.HeroPoolSize)
	for i, prompt := range heroPrompts {
		img, err := m.gen.GenerateFoodImage(ctx, prompt)
		if err != nil {
			m.logger.Printf("hero image %d/%d failed: %v", i+1, domain.HeroPoolSize, err)
		} else {
			images = append(images, img)
			m.logger.Printf("generated hero image %d/%d", i+1, domain.HeroPoolSize)
		}
		if i < len(heroPrompts)-1 {
			m.sleep(ctx, m.delay)
		}
	}

	pool := &domain.HeroImagePool{
		Images:       images,
		LastUpdated:  m.now(),
		CurrentIndex: 0,
	}

	if payload, err := json.Marshal(pool); err == nil {
		m.cache.Set(ctx, domain.HeroPoolKey, payload)
	} else {
		m.logger.Printf("marshal pool failed (not cached): %v", err)
	}
	return pool
}

// NextImage отдаёт случайную картинку пула, при отсутствии/неполноте пула
// сперва регенерирует его. false — только если генерация не дала ни одной.
func (m *Manager) NextImage(ctx context.Context) (domain.DalleImage, bool) {
	pool, ok := m.Pool(ctx)
	if !ok {
		m.logger.Println("hero pool absent or incomplete, regenerating")
		pool = m.Generate(ctx)
	}
	if len(pool.Images) == 0 {
		m.logger.Println("hero pool generation produced no images")
		return domain.DalleImage{}, false
	}

	idx := m.randInt(len(pool.Images))
	m.logger.Printf("serving hero image %d/%d", idx+1, len(pool.Images))
	return pool.Images[idx], true
}

// Refresh — административное действие: снести запись и собрать пул заново,
// минуя проверку свежести.
func (m *Manager) Refresh(ctx context.Context) *domain.HeroImagePool {
	m.logger.Println("force refreshing hero image pool...")
	m.cache.Delete(ctx, domain.HeroPoolKey)
	return m.Generate(ctx)
}

// NeedsRefresh — пула нет либо он старше 30 дней.
func (m *Manager) NeedsRefresh(ctx context.Context) bool {
	pool, ok := m.Pool(ctx)
	if !ok {
		return true
	}
	return m.now().Sub(pool.LastUpdated) > domain.HeroPoolTTL
}
