package usecase

import (
	"log"

	authdomain "subwatch-backend/internal/auth/domain"
	"subwatch-backend/pkg/ai"
)

// AccessTier identifies which funding source backs an AI call
type AccessTier string

const (
	TierBYOK     AccessTier = "byok"     // the user's own stored key
	TierOperator AccessTier = "operator" // operator-subsidized env key
	TierCredits  AccessTier = "credits"  // platform key, metered against prepaid credits
	TierNone     AccessTier = "none"     // no access
)

// Access is the outcome of resolving a user's AI entitlement for one call.
// APIKey and Model are empty when Tier is TierNone.
type Access struct {
	Tier   AccessTier
	APIKey string
	Model  string
}

// Metered reports whether the call must be charged against the user's credits
func (a *Access) Metered() bool {
	return a.Tier == TierCredits
}

// UserReader is the slice of the user repository the resolver needs
type UserReader interface {
	FindByID(id string) (*authdomain.User, error)
}

// KeyDecryptor decrypts a stored provider key
type KeyDecryptor interface {
	Decrypt(ciphertext string) (string, error)
}

// BalanceReader reads a user's credit balance in cents
type BalanceReader interface {
	GetBalance(userID string) (int, error)
}

// AccessResolver walks the access tiers in fixed precedence order:
// user key, then operator key, then prepaid credits, then none. Each tier
// either produces an Access or declares itself unsatisfied and yields to
// the next; only infrastructure failures (a failing balance lookup) abort
// the walk.
type AccessResolver struct {
	users       UserReader
	decryptor   KeyDecryptor
	balances    BalanceReader
	operatorKey string
	creditsKey  string
}

func NewAccessResolver(
	users UserReader,
	decryptor KeyDecryptor,
	balances BalanceReader,
	operatorKey, creditsKey string,
) *AccessResolver {
	return &AccessResolver{
		users:       users,
		decryptor:   decryptor,
		balances:    balances,
		operatorKey: operatorKey,
		creditsKey:  creditsKey,
	}
}

// Resolve determines the access tier for one AI call. requestedModel may be
// empty, in which case the default model is used.
func (r *AccessResolver) Resolve(userID, requestedModel string) (*Access, error) {
	user, err := r.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	strategies := []func(*authdomain.User, string) (*Access, error){
		r.userKey,
		r.operatorEnvKey,
		r.credits,
	}
	for _, resolve := range strategies {
		access, err := resolve(user, requestedModel)
		if err != nil {
			return nil, err
		}
		if access != nil {
			return access, nil
		}
	}
	return &Access{Tier: TierNone}, nil
}

// userKey is the byok tier. A stored key that fails to decrypt (rotated
// encryption key, corrupted column) counts as no key at all.
func (r *AccessResolver) userKey(user *authdomain.User, requestedModel string) (*Access, error) {
	if user.EncryptedGroqKey == "" {
		return nil, nil
	}

	key, err := r.decryptor.Decrypt(user.EncryptedGroqKey)
	if err != nil {
		log.Printf("[AIAccess] Failed to decrypt stored key for user %s, falling through: %v", user.ID, err)
		return nil, nil
	}

	return &Access{Tier: TierBYOK, APIKey: key, Model: modelOrDefault(requestedModel)}, nil
}

func (r *AccessResolver) operatorEnvKey(_ *authdomain.User, requestedModel string) (*Access, error) {
	if r.operatorKey == "" {
		return nil, nil
	}
	return &Access{Tier: TierOperator, APIKey: r.operatorKey, Model: modelOrDefault(requestedModel)}, nil
}

// credits requires a configured platform key, a positive balance, and an
// allowlisted model. A disallowed model is never silently substituted.
func (r *AccessResolver) credits(user *authdomain.User, requestedModel string) (*Access, error) {
	if r.creditsKey == "" {
		return nil, nil
	}

	balance, err := r.balances.GetBalance(user.ID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, nil
	}

	model := modelOrDefault(requestedModel)
	if !ai.ModelAllowed(model) {
		return nil, nil
	}

	return &Access{Tier: TierCredits, APIKey: r.creditsKey, Model: model}, nil
}

func modelOrDefault(model string) string {
	if model == "" {
		return ai.DefaultModel
	}
	return model
}
