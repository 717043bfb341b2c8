// payulab is a terminal companion to the sandbox server. It resolves a flow
// from command-line flags and prints the hash, gateway payload, curl command,
// debug report, or an integration snippet.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/payuvarun82/payu-multiflow/internal/adapters/formstate"
	"github.com/payuvarun82/payu-multiflow/internal/config"
	"github.com/payuvarun82/payu-multiflow/internal/domain"
	"github.com/payuvarun82/payu-multiflow/internal/services/codegen"
	"github.com/payuvarun82/payu-multiflow/internal/services/hashing"
	"github.com/payuvarun82/payu-multiflow/internal/services/payload"
)

func main() {
	app := &cli.App{
		Name:  "payulab",
		Usage: "PayU sandbox integration toolkit",
		Commands: []*cli.Command{
			flowsCommand(),
			hashCommand(),
			payloadCommand(),
			curlCommand(),
			debugCommand(),
			checkoutCommand(),
			codeCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func flowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "flow", Aliases: []string{"f"}, Required: true, Usage: "flow identifier (see 'payulab flows')"},
		&cli.StringFlag{Name: "mode", Value: "onetime", Usage: "payment mode: onetime or subscription"},
		&cli.StringFlag{Name: "txnid", Usage: "transaction id (generated when omitted)"},
		&cli.StringFlag{Name: "key", Usage: "custom merchant key"},
		&cli.StringFlag{Name: "salt", Usage: "custom merchant salt"},
		&cli.StringSliceFlag{Name: "set", Aliases: []string{"s"}, Usage: "field value as name=value (repeatable)"},
		&cli.StringSliceFlag{Name: "udf", Usage: "udf slot as n=value (repeatable)"},
		&cli.StringSliceFlag{Name: "paymethod", Usage: "enforced payment method: cc, dc, nb, upi (repeatable)"},
		&cli.BoolFlag{Name: "sample", Usage: "fill missing fields with sample data"},
	}
}

// sampleData mirrors the demo values used to prefill the sandbox forms
var sampleData = map[domain.FieldName]string{
	domain.FieldAmount:      "15000",
	domain.FieldProductInfo: "DESKTOP",
	domain.FieldFirstName:   "Sunit",
	domain.FieldLastName:    "Kumar",
	domain.FieldEmail:       "sunit.kumar@mail.com",
	domain.FieldPhone:       "9876543210",
	domain.FieldAddress1:    "FIRST FLOOR",
	domain.FieldAddress2:    "NEW ASHOK NAGAR",
	domain.FieldCity:        "Delhi",
	domain.FieldState:       "Delhi",
	domain.FieldCountry:     "INDIA",
	domain.FieldZipcode:     "201303",
}

var sampleUDFs = map[int]string{
	1: "Testing UDF 1",
	2: "Testing UDF2",
	5: "Sample_Invoice_11",
}

const sampleUserToken = "1234567890"

// buildStore materializes a store from the command flags
func buildStore(c *cli.Context, f domain.Flow, logger *zap.Logger) (*formstate.Store, domain.PaymentMode, error) {
	store := formstate.NewStore(logger)

	mode := domain.PaymentModeOneTime
	if c.String("mode") == string(domain.PaymentModeSubscription) {
		mode = domain.PaymentModeSubscription
	}
	store.SetPaymentMode(f, mode)

	key, salt := c.String("key"), c.String("salt")
	if key != "" || salt != "" {
		if c.Bool("sample") {
			return nil, mode, fmt.Errorf("--sample is only available with the predefined sandbox credentials")
		}
		if err := store.UseCustomCredentials(f, key, salt); err != nil {
			return nil, mode, err
		}
	}

	if c.Bool("sample") {
		for name, value := range sampleData {
			if err := store.Set(f, name, value); err != nil {
				return nil, mode, err
			}
		}
		for slot, value := range sampleUDFs {
			if err := store.SetUDF(f, mode, slot, value); err != nil {
				return nil, mode, err
			}
		}
		if f == domain.FlowBankOffer {
			if err := store.Set(f, domain.FieldUserToken, sampleUserToken); err != nil {
				return nil, mode, err
			}
		}
	}

	if txnid := c.String("txnid"); txnid != "" {
		if err := store.SetTransactionID(f, txnid); err != nil {
			return nil, mode, err
		}
	}

	for _, pair := range c.StringSlice("set") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, mode, fmt.Errorf("invalid --set %q, want name=value", pair)
		}
		if err := store.Set(f, domain.FieldName(name), value); err != nil {
			return nil, mode, err
		}
	}
	for _, pair := range c.StringSlice("udf") {
		slot, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, mode, fmt.Errorf("invalid --udf %q, want n=value", pair)
		}
		n, err := strconv.Atoi(slot)
		if err != nil {
			return nil, mode, fmt.Errorf("invalid --udf slot %q", slot)
		}
		if err := store.SetUDF(f, mode, n, value); err != nil {
			return nil, mode, err
		}
	}
	if methods := c.StringSlice("paymethod"); len(methods) > 0 {
		store.SetPayMethods(f, methods)
	}

	return store, mode, nil
}

// resolve runs the flag pipeline through hashing and payload assembly
func resolve(c *cli.Context) (*payload.ResolvedPayload, error) {
	f, err := domain.ParseFlow(c.String("flow"))
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	store, _, err := buildStore(c, f, logger)
	if err != nil {
		return nil, err
	}

	tc, hash, err := hashing.NewService(store, logger).ResolveAndHash(f)
	if err != nil {
		return nil, err
	}

	return payload.NewService(config.Default().Gateway, logger).Build(tc, hash)
}

func flowsCommand() *cli.Command {
	return &cli.Command{
		Name:  "flows",
		Usage: "List the supported payment flows",
		Action: func(c *cli.Context) error {
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Flow", "Name", "Hash Layout", "API Version"})
			table.SetAutoWrapText(false)
			for _, d := range domain.Flows() {
				api := d.APIVersion
				if api == "" {
					api = "-"
				}
				table.Append([]string{string(d.Flow), d.Name, string(d.Layout), api})
			}
			table.Render()
			return nil
		},
	}
}

func hashCommand() *cli.Command {
	return &cli.Command{
		Name:  "hash",
		Usage: "Compute the payment hash for a flow",
		Flags: flowFlags(),
		Action: func(c *cli.Context) error {
			p, err := resolve(c)
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Println("Hash String (before SHA-512):")
			fmt.Println(p.Hash.CanonicalString)
			fmt.Println()
			bold.Println("Hash Formula:")
			fmt.Println(p.Hash.Formula)
			fmt.Println()
			bold.Println("Generated Hash:")
			color.Green(p.Hash.Digest)
			if p.Hash.SubDocumentJSON != "" {
				fmt.Println()
				bold.Println("Sub-document:")
				fmt.Println(p.Hash.SubDocumentJSON)
			}
			return nil
		},
	}
}

func payloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "payload",
		Usage: "Print the gateway form fields in submission order",
		Flags: flowFlags(),
		Action: func(c *cli.Context) error {
			p, err := resolve(c)
			if err != nil {
				return err
			}

			color.New(color.Bold).Printf("POST %s\n\n", p.Endpoint)
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Field", "Value"})
			table.SetAutoWrapText(false)
			for _, field := range p.Fields {
				table.Append([]string{field.Name, field.Value})
			}
			table.Render()
			return nil
		},
	}
}

func curlCommand() *cli.Command {
	return &cli.Command{
		Name:  "curl",
		Usage: "Print a curl command for the flow",
		Flags: flowFlags(),
		Action: func(c *cli.Context) error {
			p, err := resolve(c)
			if err != nil {
				return err
			}
			fmt.Println(p.CurlCommand())
			return nil
		},
	}
}

func debugCommand() *cli.Command {
	return &cli.Command{
		Name:  "debug",
		Usage: "Print the full debug report for a flow",
		Flags: flowFlags(),
		Action: func(c *cli.Context) error {
			p, err := resolve(c)
			if err != nil {
				return err
			}
			p.WriteDebug(os.Stdout)
			return nil
		},
	}
}

func checkoutCommand() *cli.Command {
	flags := append(flowFlags(),
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the page to a file instead of stdout"})
	return &cli.Command{
		Name:  "checkout",
		Usage: "Emit an auto-submitting checkout page",
		Flags: flags,
		Action: func(c *cli.Context) error {
			p, err := resolve(c)
			if err != nil {
				return err
			}

			html := p.FormHTML()
			if out := c.String("out"); out != "" {
				if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
					return err
				}
				color.Green("Checkout page written to %s", out)
				return nil
			}
			fmt.Println(html)
			return nil
		},
	}
}

func codeCommand() *cli.Command {
	flags := append(flowFlags(),
		&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Value: "java", Usage: "target language: java, php, python, nodejs"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the snippet to a file instead of stdout"})
	return &cli.Command{
		Name:  "code",
		Usage: "Generate an integration snippet for a flow",
		Flags: flags,
		Action: func(c *cli.Context) error {
			lang, err := codegen.ParseLanguage(c.String("lang"))
			if err != nil {
				return err
			}

			p, err := resolve(c)
			if err != nil {
				return err
			}

			code, err := codegen.NewService(config.Default().Gateway, zap.NewNop()).Generate(lang, p.Context)
			if err != nil {
				return err
			}

			if out := c.String("out"); out != "" {
				if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
					return err
				}
				color.Green("Snippet written to %s", out)
				return nil
			}
			fmt.Println(code)
			return nil
		},
	}
}
