// Package kasir est la caisse en ligne de commande : catalogue, panier et
// paiement tunai/QRIS au-dessus de checkout.Workflow.
package kasir

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"toko_back_end/internal/catalog"
	"toko_back_end/internal/checkout"
	"toko_back_end/internal/models"
	"toko_back_end/internal/orderclient"
	"toko_back_end/internal/store"
)

// Reporter lit l'historique des commandes pour la commande "report".
type Reporter interface {
	List(ctx context.Context, f models.OrderFilter) (orderclient.ListResult, error)
}

type Terminal struct {
	catalog  *catalog.Catalog
	workflow *checkout.Workflow
	reports  Reporter
	customer models.CustomerInfo
	out      io.Writer
	logger   *zap.Logger
	now      func() time.Time
}

func NewTerminal(cat *catalog.Catalog, wf *checkout.Workflow, reports Reporter, customer models.CustomerInfo, out io.Writer, logger *zap.Logger) *Terminal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Terminal{
		catalog:  cat,
		workflow: wf,
		reports:  reports,
		customer: customer,
		out:      out,
		logger:   logger,
		now:      time.Now,
	}
}

// Notifier affiche les notifications du workflow dans le terminal.
func Notifier(out io.Writer) checkout.Notifier {
	return checkout.NotifierFunc(func(kind checkout.NotifyKind, title, message string) {
		fmt.Fprintf(out, "[%s] %s: %s\n", kind, title, message)
	})
}

const help = `Perintah:
  list [kategori]        daftar produk
  search <kata>          cari produk
  add <id>               tambah ke keranjang
  qty <id> <jumlah>      ubah jumlah (0 = hapus)
  remove <id>            hapus dari keranjang
  clear                  kosongkan keranjang
  cart                   lihat keranjang
  pay tunai|qris         pilih metode pembayaran
  tender <jumlah>        uang yang diterima (tunai)
  confirm                konfirmasi pembayaran
  submit                 kirim pesanan
  cancel                 batalkan pembayaran
  report [today|week|month|year]
  quit`

// Run lit les commandes ligne par ligne jusqu'à "quit" ou la fin de in.
func (t *Terminal) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(t.out, "> ")
	for sc.Scan() {
		quit, err := t.Exec(ctx, sc.Text())
		if err != nil {
			fmt.Fprintln(t.out, "!", message(err))
		}
		if quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprint(t.out, "> ")
	}
	return sc.Err()
}

// Exec exécute une commande. quit vaut vrai pour "quit".
func (t *Terminal) Exec(ctx context.Context, line string) (quit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprintln(t.out, help)
	case "quit", "exit":
		return true, nil
	case "list":
		category := models.CategoryAll
		if len(args) > 0 {
			category = args[0]
		}
		t.printProducts(t.catalog.Search("", category))
	case "search":
		t.printProducts(t.catalog.Search(strings.Join(args, " "), models.CategoryAll))
	case "reload":
		_, err = t.catalog.Load(ctx)
	case "add":
		err = t.add(args)
	case "qty":
		err = t.qty(args)
	case "remove":
		err = t.remove(args)
	case "clear":
		err = t.workflow.ClearCart()
	case "cart":
		t.printCart()
	case "pay":
		err = t.pay(ctx, args)
	case "tender":
		err = t.tender(args)
	case "confirm":
		if err = t.workflow.Confirm(); err == nil {
			fmt.Fprintln(t.out, "Pembayaran dikonfirmasi. Ketik 'submit' untuk mengirim pesanan.")
		}
	case "submit":
		err = t.submit(ctx)
	case "cancel":
		if err = t.workflow.Cancel(); err == nil {
			fmt.Fprintln(t.out, "Pembayaran dibatalkan, keranjang tetap tersimpan.")
		}
	case "report":
		err = t.report(ctx, args)
	default:
		err = fmt.Errorf("commande inconnue %q", cmd)
	}
	return false, err
}

func (t *Terminal) add(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: add <id>")
	}
	p, ok := t.catalog.Find(args[0])
	if !ok {
		return fmt.Errorf("produit %q introuvable", args[0])
	}
	line, err := t.workflow.AddToCart(p)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "%s x%d = %s\n", line.Name, line.Quantity, line.Subtotal())
	return nil
}

func (t *Terminal) qty(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: qty <id> <jumlah>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return checkout.ErrInvalidQuantity
	}
	if _, err := t.workflow.UpdateQuantity(args[0], n); err != nil {
		return err
	}
	t.printCart()
	return nil
}

func (t *Terminal) remove(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: remove <id>")
	}
	line, ok, err := t.workflow.RemoveFromCart(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("produit %q absent du panier", args[0])
	}
	fmt.Fprintf(t.out, "%s dihapus\n", line.Name)
	return nil
}

func (t *Terminal) pay(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: pay tunai|qris")
	}
	switch t.workflow.State() {
	case checkout.StateIdle, checkout.StateCancelled:
		if err := t.workflow.Open(); err != nil {
			return err
		}
	}

	fmt.Fprintf(t.out, "Total: %s\n", t.workflow.Total())
	switch strings.ToLower(args[0]) {
	case models.PaymentCash, "cash":
		if err := t.workflow.SelectCash(); err != nil {
			return err
		}
		fmt.Fprintln(t.out, "Masukkan uang diterima: tender <jumlah>")
	case models.PaymentQRIS:
		fmt.Fprintln(t.out, "Membuat QRIS...")
		code, err := t.workflow.SelectQR(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(t.out, "Referensi: %s\nPayload: %s\n", code.Reference, code.Payload)
	default:
		return fmt.Errorf("méthode inconnue %q", args[0])
	}
	return nil
}

func (t *Terminal) tender(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: tender <jumlah>")
	}
	amount, err := models.ParseRupiah(args[0])
	if err != nil {
		return checkout.ErrInvalidAmount
	}
	change, err := t.workflow.SetTendered(amount)
	if err != nil {
		return err
	}
	if change < 0 {
		fmt.Fprintf(t.out, "Kurang: %s\n", -change)
	} else {
		fmt.Fprintf(t.out, "Kembalian: %s\n", change)
	}
	return nil
}

func (t *Terminal) submit(ctx context.Context) error {
	order, err := t.workflow.Submit(ctx, t.customer)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Pesanan %s (%s, %s)\n", order.OrderNumber, order.PaymentMethod, order.TotalAmount)
	if ch := order.PaymentDetails.ChangeAmount; ch != nil {
		fmt.Fprintf(t.out, "Kembalian: %s\n", *ch)
	}
	return nil
}

func (t *Terminal) report(ctx context.Context, args []string) error {
	if t.reports == nil {
		return errors.New("rapport indisponible")
	}
	f := models.OrderFilter{PageSize: store.MaxPageSize}
	if len(args) > 0 {
		f.StartDate = store.PeriodStart(args[0], t.now())
	}
	res, err := t.reports.List(ctx, f)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NOMOR\tTANGGAL\tMETODE\tSTATUS\tTOTAL")
	var total models.Rupiah
	for _, o := range res.Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.OrderNumber, o.OrderDate.Local().Format("02/01 15:04"), o.PaymentMethod, o.OrderStatus, o.TotalAmount)
		if o.OrderStatus != models.OrderRejected {
			total += o.TotalAmount
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "%d transaksi, total %s\n", res.Pagination.TotalCount, total)
	return nil
}

func (t *Terminal) printProducts(products []models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(t.out, "Tidak ada produk")
		return
	}
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAMA\tKATEGORI\tHARGA")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Price)
	}
	_ = w.Flush()
}

func (t *Terminal) printCart() {
	s := t.workflow.Snapshot()
	if len(s.Lines) == 0 {
		fmt.Fprintln(t.out, "Keranjang kosong")
		return
	}
	w := tabwriter.NewWriter(t.out, 0, 4, 2, ' ', 0)
	for _, l := range s.Lines {
		fmt.Fprintf(w, "%s\t%s\tx%d\t%s\n", l.ProductID, l.Name, l.Quantity, l.Subtotal())
	}
	fmt.Fprintf(w, "\t\tTOTAL\t%s\n", s.Total)
	_ = w.Flush()
	fmt.Fprintf(t.out, "Status: %s\n", s.State)
}

// message traduit les erreurs connues pour le caissier.
func message(err error) string {
	var se *checkout.SubmissionError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		return "Keranjang kosong"
	case errors.Is(err, checkout.ErrInsufficientCash):
		return "Jumlah uang tidak mencukupi!"
	case errors.Is(err, checkout.ErrNotReady):
		return "QRIS belum siap"
	case errors.Is(err, checkout.ErrProcessing):
		return "Sedang diproses, tunggu sebentar"
	case errors.Is(err, checkout.ErrNetwork):
		return "Koneksi ke server gagal, coba lagi"
	case errors.As(err, &se):
		return "Pesanan ditolak: " + se.Reason
	}
	return err.Error()
}
