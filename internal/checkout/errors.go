package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("panier vide")
	ErrInvalidQuantity    = errors.New("quantité invalide")
	ErrInvalidAmount      = errors.New("montant invalide")
	ErrInsufficientCash   = errors.New("montant en espèces insuffisant")
	ErrNotReady           = errors.New("référence QRIS pas encore générée")
	ErrQRGenerationFailed = errors.New("échec de génération du QRIS")
	ErrNetwork            = errors.New("collaborateur injoignable")
	ErrProcessing         = errors.New("opération déjà en cours")
	ErrInvalidTransition  = errors.New("transition de paiement illégale")
	ErrCancelled          = errors.New("paiement annulé")
)

// SubmissionError est renvoyée quand l'API commandes refuse la commande.
type SubmissionError struct {
	StatusCode int
	Reason     string
}

func (e *SubmissionError) Error() string {
	if e.StatusCode == 0 {
		return "commande refusée: " + e.Reason
	}
	return fmt.Sprintf("commande refusée (%d): %s", e.StatusCode, e.Reason)
}

// IsRetryable indique si l'erreur vient d'un collaborateur distant
// (soumission, réseau, QRIS) et peut être retentée par l'utilisateur.
func IsRetryable(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se) ||
		errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrQRGenerationFailed)
}
