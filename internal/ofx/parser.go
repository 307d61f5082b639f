// Package ofx reads bank and credit card statements into transaction
// drafts for the ledger.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-ledger-must-balance/internal/model"
)

// Entry is one statement line ready to post.
type Entry struct {
	FITID   string
	Account string
	Draft   model.TransactionDraft
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be INFO, WARN or ERROR.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML exports sometimes drop the closing bracket of a bare tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX statement. Every entry is booked to
// categoryID. Zero amounts and repeated FITIDs are skipped.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, categoryID string) ([]Entry, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var (
		entries            []Entry
		bankStmts, ccStmts int
		seen               = make(map[string]bool)
	)
	collect := func(account string, list *ofxgo.TransactionList) {
		if list == nil {
			return
		}
		for _, ofxTx := range list.Transactions {
			entry, ok := p.convertTransaction(ofxTx, account, categoryID)
			if !ok {
				continue
			}
			if entry.FITID != "" {
				key := account + "/" + entry.FITID
				if seen[key] {
					p.logger.Debug("Skipping repeated OFX transaction", "fitid", entry.FITID)
					continue
				}
				seen[key] = true
			}
			entries = append(entries, entry)
		}
	}

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			collect(string(stmt.BankAcctFrom.AcctID), stmt.BankTranList)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			collect(string(stmt.CCAcctFrom.AcctID), stmt.BankTranList)
		}
	}

	p.logger.Info("Parsed OFX file",
		"total_transactions", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return entries, nil
}

// convertTransaction maps a statement line to a draft. Credits are money
// in and debits money out.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, account, categoryID string) (Entry, bool) {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)
	if amount.IsZero() {
		return Entry{}, false
	}

	direction := model.DirectionIn
	if amount.IsNegative() {
		direction = model.DirectionOut
		amount = amount.Neg()
	}

	posted := ofxTx.DtPosted.Time
	if posted.IsZero() {
		posted = ofxTx.DtUser.Time
	}

	return Entry{
		FITID:   string(ofxTx.FiTID),
		Account: account,
		Draft: model.TransactionDraft{
			At:         postedDay(posted),
			Amount:     amount,
			Direction:  direction,
			CategoryID: categoryID,
			Note:       extractPayee(ofxTx),
		},
	}, true
}

// postedDay keeps the calendar date the bank reported.
func postedDay(t time.Time) model.Stamp {
	if t.IsZero() {
		return model.Stamp{}
	}
	y, m, d := t.Date()
	return model.Stamp{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), DateOnly: true}
}

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// extractPayee tries to get a clean payee name from OFX data.
func extractPayee(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " left over from card prefixes.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
