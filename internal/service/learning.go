package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"match-coach/internal/domain"
	"match-coach/internal/llm"
)

// MetricSnapshotter persiste metricas de aprendizaje fuera del proceso.
// Es opcional: el ledger funciona completo en memoria y solo avisa con Warn
// cuando un snapshot falla.
type MetricSnapshotter interface {
	Save(ctx context.Context, metric domain.LearningMetric) error
	LoadAll(ctx context.Context) ([]domain.LearningMetric, error)
}

type metricKey struct {
	userID     string
	promptType string
	provider   string
}

// LearningLedger registra efectividad por (usuario, tipo de prompt, proveedor)
// y recomienda el proveedor optimo. Tambien deriva ajustes de preferencias.
type LearningLedger struct {
	mu      sync.Mutex
	metrics map[metricKey]domain.LearningMetric

	store    UserContextStore
	snapshot MetricSnapshotter
	logger   *zap.Logger
}

func NewLearningLedger(store UserContextStore, snapshot MetricSnapshotter, logger *zap.Logger) *LearningLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LearningLedger{
		metrics:  make(map[metricKey]domain.LearningMetric),
		store:    store,
		snapshot: snapshot,
		logger:   logger,
	}
}

// Restore precarga metricas desde el snapshotter, si hay uno configurado.
func (l *LearningLedger) Restore(ctx context.Context) {
	if l.snapshot == nil {
		return
	}
	metrics, err := l.snapshot.LoadAll(ctx)
	if err != nil {
		l.logger.Warn("metric snapshot load failed", zap.Error(err))
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range metrics {
		l.metrics[metricKey{m.UserID, m.PromptType, m.AIProvider}] = m
	}
}

// RecordLearning actualiza la media ponderada de exito del triple y, segun la
// señal, corre las preferencias del usuario.
func (l *LearningLedger) RecordLearning(userID, promptType, provider string, effectiveness float64, feedbackText string) {
	l.mu.Lock()
	key := metricKey{userID, promptType, provider}
	m, ok := l.metrics[key]
	if ok {
		oldCount := float64(m.UsageFrequency)
		m.SuccessRate = (m.SuccessRate*oldCount + effectiveness) / (oldCount + 1)
		m.UsageFrequency++
		m.AverageRating = (m.AverageRating*oldCount + effectiveness*5) / (oldCount + 1)
	} else {
		m = domain.LearningMetric{
			UserID:            userID,
			PromptType:        promptType,
			AIProvider:        provider,
			SuccessRate:       effectiveness,
			UsageFrequency:    1,
			AverageRating:     effectiveness * 5,
			ContextSimilarity: 0.5,
		}
	}
	m.LastUpdated = time.Now().UTC()
	l.metrics[key] = m
	l.mu.Unlock()

	if l.snapshot != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := l.snapshot.Save(ctx, m); err != nil {
			l.logger.Warn("metric snapshot save failed", zap.Error(err), zap.String("user_id", userID))
		}
		cancel()
	}

	l.adjustPreferences(userID, provider, effectiveness, feedbackText)
}

// adjustPreferences aplica el sesgo de estilo y las correcciones de detalle
// que se desprenden del feedback textual.
func (l *LearningLedger) adjustPreferences(userID, provider string, effectiveness float64, feedbackText string) {
	uc, err := l.store.Get(userID)
	if err != nil {
		l.logger.Warn("context load for preference drift failed", zap.Error(err), zap.String("user_id", userID))
		return
	}

	prefs := uc.LearningPreferences
	changed := false

	if effectiveness > 0.8 {
		if llm.AnalyticalProviders[provider] && prefs.PreferredAIStyle != domain.AIStyleAnalytical {
			prefs.PreferredAIStyle = domain.AIStyleAnalytical
			changed = true
		} else if llm.CreativeProviders[provider] && prefs.PreferredAIStyle != domain.AIStyleCreative {
			prefs.PreferredAIStyle = domain.AIStyleCreative
			changed = true
		}
	}

	lower := strings.ToLower(feedbackText)
	if strings.Contains(lower, "too detailed") || strings.Contains(lower, "too long") {
		if prefs.DetailLevel != domain.DetailBrief {
			prefs.DetailLevel = domain.DetailBrief
			changed = true
		}
	} else if strings.Contains(lower, "need more detail") || strings.Contains(lower, "too short") {
		if prefs.DetailLevel != domain.DetailComprehensive {
			prefs.DetailLevel = domain.DetailComprehensive
			changed = true
		}
	}

	if changed {
		if err := l.store.Update(userID, domain.UserContextPatch{LearningPreferences: &prefs}); err != nil {
			l.logger.Warn("preference drift update failed", zap.Error(err), zap.String("user_id", userID))
		}
	}
}

// OptimalProvider devuelve el proveedor con mejor score para el usuario y tipo
// de prompt. Sin metricas cae al mapeo fijo por estilo preferido. Con metricas
// usa successRate x ln(usageFrequency+1): premia exito sostenido con volumen y
// evita que un unico resultado afortunado domine la seleccion.
// Recibe el contexto ya cargado: la seleccion no relee el store, asi una
// mutacion concurrente no cambia el proveedor a mitad de solicitud.
func (l *LearningLedger) OptimalProvider(uc domain.UserContext, promptType string) string {
	l.mu.Lock()
	var best string
	bestScore := math.Inf(-1)
	for key, m := range l.metrics {
		if key.userID != uc.UserID || key.promptType != promptType {
			continue
		}
		score := m.SuccessRate * math.Log(float64(m.UsageFrequency)+1)
		if score > bestScore {
			bestScore = score
			best = key.provider
		}
	}
	l.mu.Unlock()

	if best != "" {
		return best
	}

	return llm.ProviderForStyle(uc.LearningPreferences.PreferredAIStyle)
}

var detailHeavyIntents = map[string]struct{}{
	domain.IntentDatePlanning:       {},
	domain.IntentRelationshipAdvice: {},
}

// AnalyzePatterns resume el comportamiento historico del usuario: intenciones
// mas frecuentes, proveedores mas efectivos, pares crudos de timing y
// fracciones de urgencia/detalle sobre las sesiones recientes.
func (l *LearningLedger) AnalyzePatterns(userID string) (domain.UserPatterns, error) {
	uc, err := l.store.Get(userID)
	if err != nil {
		return domain.UserPatterns{}, err
	}
	return l.patternsFrom(uc), nil
}

func (l *LearningLedger) patternsFrom(uc domain.UserContext) domain.UserPatterns {
	intentCounts := make(map[string]int)
	timing := make([]domain.TimingSample, 0, len(uc.SessionHistory))
	highUrgency := 0
	detailHeavy := 0
	for _, sc := range uc.SessionHistory {
		intentCounts[sc.UserIntent]++
		timing = append(timing, domain.TimingSample{
			Hour:      sc.Timestamp.Hour(),
			DayOfWeek: sc.Timestamp.Weekday(),
		})
		if sc.UrgencyLevel == domain.UrgencyHigh {
			highUrgency++
		}
		if _, ok := detailHeavyIntents[sc.UserIntent]; ok {
			detailHeavy++
		}
	}

	prefs := domain.CommunicationPreferences{}
	if n := len(uc.SessionHistory); n > 0 {
		prefs.Urgency = float64(highUrgency) / float64(n)
		prefs.Detail = float64(detailHeavy) / float64(n)
	}

	return domain.UserPatterns{
		PreferredPromptTypes:     topKByCount(intentCounts, 3),
		OptimalTiming:            timing,
		EffectiveAIProviders:     l.topProviders(uc.UserID, 3),
		CommunicationPreferences: prefs,
	}
}

// PreferredPromptTypes implementa PatternSource para el personalizador.
// Opera sobre el contexto ya cargado por el orquestador, sin releer el store.
func (l *LearningLedger) PreferredPromptTypes(uc domain.UserContext) []string {
	return l.patternsFrom(uc).PreferredPromptTypes
}

func (l *LearningLedger) topProviders(userID string, k int) []string {
	l.mu.Lock()
	sums := make(map[string]float64)
	for key, m := range l.metrics {
		if key.userID == userID {
			sums[key.provider] += m.SuccessRate
		}
	}
	l.mu.Unlock()

	return topKByScore(sums, k)
}

func topKByCount(counts map[string]int, k int) []string {
	scores := make(map[string]float64, len(counts))
	for key, n := range counts {
		scores[key] = float64(n)
	}
	return topKByScore(scores, k)
}

func topKByScore(scores map[string]float64, k int) []string {
	keys := make([]string, 0, len(scores))
	for key := range scores {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] > scores[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > k {
		keys = keys[:k]
	}
	return keys
}
