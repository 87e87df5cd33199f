package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/concilia-dev/concilia/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing, shaped like a Brazilian bank export.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>341
<ACCTID>12345-6
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240301120000[0:GMT]
<DTEND>20240331120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240305120000[0:GMT]
<TRNAMT>-150.00
<FITID>2024030501
<NAME>PAGTO FORNECEDOR
<MEMO>PAGTO FORNECEDOR ACME LTDA
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240310120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024031001
<NAME>PIX RECEBIDO
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20240315120000[0:GMT]
<TRNAMT>-29.90
<FITID>2024031501
<NAME>TARIFA
<MEMO>MANUTENCAO DE CONTA
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>5000.00
<DTASOF>20240331120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParser_ParseFile(t *testing.T) {
	parser := NewParser()
	ctx := context.Background()

	txns, err := parser.ParseFile(ctx, strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	first := txns[0]
	assert.Equal(t, "2024030501", first.ID)
	assert.Equal(t, "2024030501", first.FitID)
	assert.Equal(t, "12345-6", first.AccountID)
	assert.Equal(t, model.StateUnreconciled, first.State)
	assert.NotEmpty(t, first.Hash)
	assert.Equal(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), first.PostedAt.UTC())

	// Debits stay negative, credits stay positive.
	assert.InDelta(t, -150.00, first.Amount, 0.001)
	assert.InDelta(t, 2500.00, txns[1].Amount, 0.001)
	assert.True(t, txns[1].IsCredit())
	assert.False(t, first.IsCredit())
}

func TestParser_ParseFile_InvalidInput(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseFile(context.Background(), strings.NewReader("not an ofx file"))
	assert.Error(t, err)
}

func TestParser_ExtractMemo(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name string
		txn  ofxgo.Transaction
		want string
	}{
		{
			name: "memo contains name",
			txn: ofxgo.Transaction{
				Name: "PAGTO FORNECEDOR",
				Memo: "PAGTO FORNECEDOR ACME LTDA",
			},
			want: "PAGTO FORNECEDOR ACME LTDA",
		},
		{
			name: "name only",
			txn:  ofxgo.Transaction{Name: "PIX RECEBIDO"},
			want: "PIX RECEBIDO",
		},
		{
			name: "memo only",
			txn:  ofxgo.Transaction{Memo: "TED JOAO DA SILVA"},
			want: "TED JOAO DA SILVA",
		},
		{
			name: "distinct name and memo are joined",
			txn: ofxgo.Transaction{
				Name: "TARIFA",
				Memo: "MANUTENCAO DE CONTA",
			},
			want: "TARIFA MANUTENCAO DE CONTA",
		},
		{
			name: "whitespace trimmed",
			txn:  ofxgo.Transaction{Name: "  COMPRA CARTAO  "},
			want: "COMPRA CARTAO",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.extractMemo(tt.txn))
		})
	}
}

func TestParser_PreprocessOFX(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fixes mixed-case severity",
			input: "<SEVERITY>Info</SEVERITY>",
			want:  "<SEVERITY>INFO</SEVERITY>",
		},
		{
			name:  "closes dangling tags",
			input: "<STMTTRN",
			want:  "<STMTTRN>",
		},
		{
			name:  "trims leading whitespace",
			input: "\n\n  OFXHEADER:100",
			want:  "OFXHEADER:100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.preprocessOFX(tt.input))
		})
	}
}

func TestParser_GetAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"12345-6"}, accounts)
}
