package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"HomeLedger/internal/cli/bootstrap"
	"HomeLedger/internal/cli/model"
	"HomeLedger/internal/cli/principal"
	"HomeLedger/internal/cli/service"
	"HomeLedger/internal/config"
)

// cliNotifier печатает уведомления в Out.
var cliNotifier = service.NotifierFunc(func(n service.Notice) {
	fmt.Fprintf(Out, "%s %s\n", symbol(n.Level), n.Text)
})

func symbol(l service.Level) string {
	switch l {
	case service.LevelSuccess:
		return "✓"
	case service.LevelWarning:
		return "!"
	case service.LevelError:
		return "×"
	}
	return "•"
}

// openEnv собирает зависимости команды; вызывающий обязан вызвать Close.
func openEnv(cfg *config.Config) (*bootstrap.Env, error) {
	return bootstrap.Open(cfg, cliNotifier, logger)
}

// newFlagSet создаёт FlagSet команды без вывода в stderr.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// multiFlag собирает повторяющийся флаг.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

// optString - строковый флаг, различающий "не задан" и пустое значение.
type optString struct {
	set   bool
	value string
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(v string) error {
	o.set, o.value = true, v
	return nil
}

// ptr возвращает nil для незаданного флага.
func (o *optString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// loadLedger загружает items пользователя в кэш, чтобы транзакции могли найти цель.
func loadLedger(ctx context.Context, env *bootstrap.Env) (principal.Principal, error) {
	p, err := env.RequirePrincipal()
	if err != nil {
		return p, err
	}
	if _, err := env.Ledger.List(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

// resolveItem ищет item по id, затем по коду.
func resolveItem(l service.ItemService, ref string) (model.Item, error) {
	if it, ok := l.Find(ref); ok {
		return it, nil
	}
	if it, ok := l.FindByCode(strings.ToUpper(ref)); ok {
		return it, nil
	}
	return model.Item{}, fmt.Errorf("%q: %w", ref, service.ErrItemNotFound)
}

// localFiles описывает файлы для загрузки: имя и media type по расширению или содержимому.
func localFiles(paths []string) ([]model.LocalFile, error) {
	out := make([]model.LocalFile, 0, len(paths))
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if st.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if mt == "" {
			mt, err = sniff(p)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, model.LocalFile{Path: p, Name: filepath.Base(p), MediaType: mt})
	}
	return out, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

func printItems(items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(Out, "No items")
		return
	}
	for _, it := range items {
		low := ""
		if it.LowStock() {
			low = "  [LOW STOCK]"
		}
		exp := "-"
		if it.ExpDate != nil && !it.ExpDate.IsZero() {
			exp = it.ExpDate.String()
		}
		fmt.Fprintf(Out, "- %s  %s  %s  (%s)  qty=%s %s  price=%s  reorder=%s  exp=%s  id=%s%s\n",
			it.Code, it.Name, it.Type, it.Desc,
			model.FormatNumber(it.Qty), it.UOM.Display(),
			model.FormatNumber(it.Price), model.FormatNumber(it.ReorderLevel),
			exp, it.ID, low)
	}
	fmt.Fprintf(Out, "Total: %d\n", len(items))
}
