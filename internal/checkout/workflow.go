package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"toko_back_end/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateMethodSelection
	StateCashEntry
	StateQRPending
	StateConfirmed
	StateSubmitted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMethodSelection:
		return "method_selection"
	case StateCashEntry:
		return "cash_entry"
	case StateQRPending:
		return "qr_pending"
	case StateConfirmed:
		return "confirmed"
	case StateSubmitted:
		return "submitted"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot est une photo de la session de caisse.
type Snapshot struct {
	State      State
	Lines      []models.CartLine
	Total      models.Rupiah
	Selection  PaymentSelection
	Processing bool
}

// Workflow pilote une session de caisse : panier, choix du mode de paiement,
// validation locale puis envoi de la commande.
//
// Le verrou n'est jamais tenu pendant la génération QRIS ni pendant l'envoi de
// la commande ; le drapeau processing bloque les transitions concurrentes.
type Workflow struct {
	mu sync.Mutex

	cart       *Cart
	state      State
	selection  PaymentSelection
	processing bool
	// cancelled pendant une génération QRIS : le résultat sera ignoré
	suppressNext bool
	orderNumber  string
	lastOrder    *models.Order

	qr       QRGenerator
	orders   OrderSubmitter
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	kasir    string
}

type Option func(*Workflow)

func WithNotifier(n Notifier) Option {
	return func(w *Workflow) {
		if n != nil {
			w.notifier = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		if now != nil {
			w.now = now
		}
	}
}

func WithCart(c *Cart) Option {
	return func(w *Workflow) {
		if c != nil {
			w.cart = c
		}
	}
}

// WithKasir renseigne le nom du caissier envoyé avec chaque commande.
func WithKasir(name string) Option {
	return func(w *Workflow) {
		w.kasir = name
	}
}

func NewWorkflow(qr QRGenerator, orders OrderSubmitter, opts ...Option) *Workflow {
	w := &Workflow{
		cart:     NewCart(),
		state:    StateIdle,
		qr:       qr,
		orders:   orders,
		notifier: nopNotifier{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ---------- Panier ----------

func (w *Workflow) AddToCart(p models.Product) (models.CartLine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkCartEditable(); err != nil {
		return models.CartLine{}, err
	}

	existed := w.cart.Quantity(p.ID) > 0
	line := w.cart.AddItem(p)
	w.afterCartChange()

	if existed {
		w.notifier.Notify(NotifySuccess, "Ditambah ke Keranjang", fmt.Sprintf("%s bertambah 1", p.Name))
	} else {
		w.notifier.Notify(NotifySuccess, "Ditambah ke Keranjang", fmt.Sprintf("%s ditambahkan ke keranjang", p.Name))
	}
	return line, nil
}

func (w *Workflow) UpdateQuantity(productID string, qty int) (models.CartLine, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkCartEditable(); err != nil {
		return models.CartLine{}, err
	}

	line, ok, err := w.cart.SetQuantity(productID, qty)
	if err != nil {
		return models.CartLine{}, err
	}
	if ok {
		if qty == 0 {
			w.notifier.Notify(NotifyInfo, "Dihapus", fmt.Sprintf("%s dihapus dari keranjang", line.Name))
		}
		w.afterCartChange()
	}
	return line, nil
}

// RemoveFromCart renvoie la ligne retirée, ou false si elle n'existait pas.
func (w *Workflow) RemoveFromCart(productID string) (models.CartLine, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkCartEditable(); err != nil {
		return models.CartLine{}, false, err
	}

	line, ok := w.cart.RemoveItem(productID)
	if ok {
		w.notifier.Notify(NotifyInfo, "Dihapus", fmt.Sprintf("%s dihapus dari keranjang", line.Name))
		w.afterCartChange()
	}
	return line, ok, nil
}

func (w *Workflow) ClearCart() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkCartEditable(); err != nil {
		return err
	}

	w.cart.Clear()
	w.afterCartChange()
	w.notifier.Notify(NotifyInfo, "Keranjang Kosong", "Semua item dihapus dari keranjang")
	return nil
}

// Le panier reste modifiable tant qu'aucun QRIS n'est émis ni aucun
// paiement confirmé : ces deux états figent le montant.
func (w *Workflow) checkCartEditable() error {
	if w.processing {
		return ErrProcessing
	}
	switch w.state {
	case StateQRPending, StateConfirmed:
		return ErrInvalidTransition
	}
	return nil
}

func (w *Workflow) afterCartChange() {
	if w.cart.IsEmpty() && (w.state == StateMethodSelection || w.state == StateCashEntry) {
		w.selection = nil
		w.setState(StateIdle)
		return
	}
	if cash, ok := w.selection.(CashPayment); ok && cash.Entered {
		cash.Change = cash.Tendered - w.cart.Total()
		w.selection = cash
	}
}

// ---------- Paiement ----------

// Open ouvre la caisse (Idle ou Cancelled → MethodSelection).
func (w *Workflow) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.processing {
		return ErrProcessing
	}
	switch w.state {
	case StateIdle, StateCancelled:
	case StateMethodSelection:
		return nil
	default:
		return fmt.Errorf("%w: open depuis %s", ErrInvalidTransition, w.state)
	}
	if w.cart.IsEmpty() {
		return ErrEmptyCart
	}

	w.selection = nil
	w.setState(StateMethodSelection)
	return nil
}

// SelectCash passe en saisie espèces. Accepté aussi depuis QRPending ou
// CashEntry pour changer de mode.
func (w *Workflow) SelectCash() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.processing {
		return ErrProcessing
	}
	if !canSelectMethod(w.state) {
		return fmt.Errorf("%w: tunai depuis %s", ErrInvalidTransition, w.state)
	}

	w.selection = CashPayment{}
	w.setState(StateCashEntry)
	return nil
}

// SelectQR passe en QRPending et génère la référence QRIS. En cas d'échec la
// session revient à MethodSelection.
func (w *Workflow) SelectQR(ctx context.Context) (QRCode, error) {
	w.mu.Lock()
	if w.processing {
		w.mu.Unlock()
		return QRCode{}, ErrProcessing
	}
	if !canSelectMethod(w.state) {
		state := w.state
		w.mu.Unlock()
		return QRCode{}, fmt.Errorf("%w: qris depuis %s", ErrInvalidTransition, state)
	}
	w.selection = QRPayment{}
	w.setState(StateQRPending)
	w.processing = true
	w.suppressNext = false
	amount := w.cart.Total()
	w.mu.Unlock()

	code, err := w.qr.Generate(ctx, amount)
	if err == nil && code.Reference == "" {
		err = fmt.Errorf("référence vide")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.processing = false

	if w.suppressNext {
		w.suppressNext = false
		w.logger.Info("ℹ️ QRIS ignoré après annulation", zap.String("reference", code.Reference))
		return QRCode{}, ErrCancelled
	}

	if err != nil {
		w.selection = nil
		w.setState(StateMethodSelection)
		w.logger.Error("❌ Erreur génération QRIS", zap.Error(err))
		w.notifier.Notify(NotifyError, "Gagal", "Gagal membuat QRIS. Silakan coba lagi.")
		return QRCode{}, fmt.Errorf("%w: %w", ErrQRGenerationFailed, err)
	}

	w.selection = QRPayment{Code: code}
	w.logger.Info("✅ QRIS généré", zap.String("reference", code.Reference), zap.Int64("amount", int64(amount)))
	return code, nil
}

// SetTendered saisit le montant remis en espèces et renvoie la monnaie
// (négative si le montant est insuffisant).
func (w *Workflow) SetTendered(amount models.Rupiah) (models.Rupiah, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.processing {
		return 0, ErrProcessing
	}
	if w.state != StateCashEntry {
		return 0, fmt.Errorf("%w: saisie espèces depuis %s", ErrInvalidTransition, w.state)
	}
	if amount < 0 {
		return 0, ErrInvalidAmount
	}

	cash := CashPayment{
		Tendered: amount,
		Change:   amount - w.cart.Total(),
		Entered:  true,
	}
	w.selection = cash
	return cash.Change, nil
}

// Confirm valide localement le paiement (espèces suffisantes ou QRIS prêt).
func (w *Workflow) Confirm() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateCashEntry:
		if w.processing {
			return ErrProcessing
		}
		cash, _ := w.selection.(CashPayment)
		if cash.Tendered-w.cart.Total() < 0 {
			w.notifier.Notify(NotifyError, "Uang Kurang", "Jumlah uang tidak mencukupi!")
			return ErrInsufficientCash
		}
	case StateQRPending:
		qr, _ := w.selection.(QRPayment)
		if !qr.Ready() {
			return ErrNotReady
		}
	default:
		return fmt.Errorf("%w: confirm depuis %s", ErrInvalidTransition, w.state)
	}

	w.orderNumber = NewOrderNumber(w.now())
	w.setState(StateConfirmed)
	return nil
}

// Submit envoie la commande confirmée. En cas de succès le panier est vidé et
// la session revient à Idle ; en cas d'échec elle reste Confirmed, panier et
// paiement intacts, pour permettre un nouvel essai.
func (w *Workflow) Submit(ctx context.Context, customer models.CustomerInfo) (models.Order, error) {
	w.mu.Lock()
	if w.processing {
		w.mu.Unlock()
		return models.Order{}, ErrProcessing
	}
	if w.state != StateConfirmed {
		state := w.state
		w.mu.Unlock()
		return models.Order{}, fmt.Errorf("%w: submit depuis %s", ErrInvalidTransition, state)
	}
	req := NewOrderRequest(w.cart.Lines(), w.selection, customer, w.orderNumber, w.now())
	req.Kasir = w.kasir
	w.processing = true
	w.mu.Unlock()

	order, err := w.orders.SubmitOrder(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.processing = false

	if err != nil {
		w.logger.Error("❌ Erreur envoi commande",
			zap.String("orderNumber", req.OrderNumber),
			zap.Error(err))
		w.notifier.Notify(NotifyError, "Gagal", "Terjadi kesalahan saat memproses pesanan. Silakan coba lagi.")
		return models.Order{}, err
	}

	if order.OrderNumber == "" {
		order.OrderNumber = req.OrderNumber
	}
	w.setState(StateSubmitted)
	w.lastOrder = &order
	w.cart.Clear()
	w.selection = nil
	w.orderNumber = ""
	w.setState(StateIdle)

	w.logger.Info("✅ Commande créée",
		zap.String("orderNumber", order.OrderNumber),
		zap.Int64("total", int64(req.TotalAmount)),
		zap.String("method", req.PaymentMethod))
	w.notifier.Notify(NotifySuccess, "Pesanan berhasil dibuat!", order.OrderNumber)
	return order, nil
}

// Cancel abandonne le paiement en gardant le panier. Pendant la génération
// QRIS, l'annulation ne fait qu'ignorer le résultat à venir.
//
// Pendant l'envoi d'une commande elle est refusée avec ErrProcessing, au lieu
// de seulement ignorer la transition suivante : la commande peut déjà exister
// côté serveur, et le caissier doit voir le résultat de Submit (succès, ou
// échec avec panier et paiement intacts) plutôt qu'une caisse annulée.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateSubmitted:
		return fmt.Errorf("%w: cancel depuis %s", ErrInvalidTransition, w.state)
	case StateCancelled:
		return nil
	}
	if w.processing {
		if w.state != StateQRPending {
			return ErrProcessing
		}
		w.suppressNext = true
	}

	w.selection = nil
	w.orderNumber = ""
	w.setState(StateCancelled)
	return nil
}

// ---------- Lecture ----------

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) Processing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processing
}

func (w *Workflow) Total() models.Rupiah {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cart.Total()
}

func (w *Workflow) Lines() []models.CartLine {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cart.Lines()
}

func (w *Workflow) Selection() PaymentSelection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection
}

// Change renvoie la monnaie à rendre ; false tant qu'aucun montant n'est saisi.
func (w *Workflow) Change() (models.Rupiah, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cash, ok := w.selection.(CashPayment)
	if !ok || !cash.Entered {
		return 0, false
	}
	return cash.Change, true
}

// LastOrder renvoie la dernière commande acceptée, pour le suivi.
func (w *Workflow) LastOrder() (models.Order, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastOrder == nil {
		return models.Order{}, false
	}
	return *w.lastOrder, true
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		State:      w.state,
		Lines:      w.cart.Lines(),
		Total:      w.cart.Total(),
		Selection:  w.selection,
		Processing: w.processing,
	}
}

func (w *Workflow) setState(s State) {
	if s != w.state {
		w.logger.Debug("🔁 transition", zap.Stringer("from", w.state), zap.Stringer("to", s))
	}
	w.state = s
}

func canSelectMethod(s State) bool {
	switch s {
	case StateMethodSelection, StateCashEntry, StateQRPending:
		return true
	}
	return false
}
