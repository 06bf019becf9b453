// Package resolve maps plan exercise references onto enriched library
// records. References carry an optional exercise id and a free-form name;
// ids are authoritative and collision-free, names are a fallback.
package resolve

import (
	"context"
	"errors"
	"strings"
	"time"

	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/domain"
	"coachly/fitness-coach/internal/repository"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	cacheExpiration = 30 * time.Minute
	cacheCleanup    = 10 * time.Minute
)

// Resolution is the lookup produced by a batch resolve. ByID is keyed by the
// hex object id, ByName by the normalized exercise name.
type Resolution struct {
	ByName map[string]domain.LibraryExercise
	ByID   map[string]domain.LibraryExercise
}

func newResolution() Resolution {
	return Resolution{
		ByName: make(map[string]domain.LibraryExercise),
		ByID:   make(map[string]domain.LibraryExercise),
	}
}

// NameKey normalizes an exercise name for lookup.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup resolves one reference against the maps. An id hit wins
// unconditionally over a name hit, even when both are present.
func (r Resolution) Lookup(ref domain.ExerciseRef) (domain.LibraryExercise, bool) {
	if ref.ExerciseID != nil && *ref.ExerciseID != primitive.NilObjectID {
		if ex, ok := r.ByID[ref.ExerciseID.Hex()]; ok {
			return ex, true
		}
	}
	if ex, ok := r.ByName[NameKey(ref.Name)]; ok {
		return ex, true
	}
	return domain.LibraryExercise{}, false
}

// merge adds an exercise to both maps.
func (r Resolution) merge(ex domain.LibraryExercise) {
	if key := NameKey(ex.Name); key != "" {
		r.ByName[key] = ex
	}
	if ex.ID != primitive.NilObjectID {
		r.ByID[ex.ID.Hex()] = ex
	}
}

// Resolver answers batch lookups against the exercise library, caching hits,
// and generates missing records on demand.
type Resolver struct {
	library   repository.ExerciseLibraryRepository
	generator ai.Generator
	cache     *gocache.Cache
}

// NewResolver creates a resolver over the library repository. generator may
// be needed only for EnrichOne.
func NewResolver(library repository.ExerciseLibraryRepository, generator ai.Generator) *Resolver {
	return &Resolver{
		library:   library,
		generator: generator,
		cache:     gocache.New(cacheExpiration, cacheCleanup),
	}
}

// ResolveBatch resolves a day's references in one pass. Duplicate references
// are deduplicated before querying; cached records are served without a query.
func (r *Resolver) ResolveBatch(ctx context.Context, refs []domain.ExerciseRef) (Resolution, error) {
	res := newResolution()

	wantIDs := make(map[string]primitive.ObjectID)
	wantNames := make(map[string]string)
	for _, ref := range refs {
		if ref.IsEmpty() {
			continue
		}
		if ref.ExerciseID != nil && *ref.ExerciseID != primitive.NilObjectID {
			wantIDs[ref.ExerciseID.Hex()] = *ref.ExerciseID
		}
		if key := NameKey(ref.Name); key != "" {
			wantNames[key] = ref.Name
		}
	}

	var missIDs []primitive.ObjectID
	for hex, id := range wantIDs {
		if cached, ok := r.cache.Get("id:" + hex); ok {
			res.merge(cached.(domain.LibraryExercise))
			continue
		}
		missIDs = append(missIDs, id)
	}
	var missNames []string
	for key, name := range wantNames {
		if cached, ok := r.cache.Get("name:" + key); ok {
			res.merge(cached.(domain.LibraryExercise))
			continue
		}
		missNames = append(missNames, name)
	}

	if len(missIDs) > 0 {
		found, err := r.library.GetByIDs(ctx, missIDs)
		if err != nil {
			return res, err
		}
		for _, ex := range found {
			r.remember(ex)
			res.merge(ex)
		}
	}
	if len(missNames) > 0 {
		found, err := r.library.GetByNames(ctx, missNames)
		if err != nil {
			return res, err
		}
		for _, ex := range found {
			r.remember(ex)
			res.merge(ex)
		}
	}

	return res, nil
}

// EnrichOne generates a library record for a reference that had no match and
// persists it so later sessions resolve it from the library. A partial result
// is stored and returned together with ai.ErrPartialData.
func (r *Resolver) EnrichOne(ctx context.Context, ref domain.ExerciseRef) (*domain.LibraryExercise, error) {
	if ref.Name == "" {
		return nil, errors.New("resolve: reference has no name to enrich")
	}

	exercise, genErr := r.generator.EnrichExercise(ctx, ref.Name)
	if genErr != nil && !errors.Is(genErr, ai.ErrPartialData) {
		return nil, genErr
	}

	if _, err := r.library.Upsert(ctx, exercise); err != nil {
		// The generated record is still usable for this session.
		logrus.Warnf("resolve: failed to persist enriched exercise %q: %v", exercise.Name, err)
	}

	r.remember(*exercise)
	return exercise, genErr
}

// remember caches an exercise by name and, when it carries one, by id.
func (r *Resolver) remember(ex domain.LibraryExercise) {
	if key := NameKey(ex.Name); key != "" {
		r.cache.Set("name:"+key, ex, gocache.DefaultExpiration)
	}
	if ex.ID != primitive.NilObjectID {
		r.cache.Set("id:"+ex.ID.Hex(), ex, gocache.DefaultExpiration)
	}
}
