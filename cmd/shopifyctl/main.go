package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/athebyme/shopify-product-service/config"
	"github.com/athebyme/shopify-product-service/internal/adapters/logger"
	"github.com/athebyme/shopify-product-service/internal/adapters/shopify"
	"github.com/athebyme/shopify-product-service/internal/domain/models"
	"github.com/athebyme/shopify-product-service/internal/domain/services"
	"github.com/athebyme/shopify-product-service/internal/security"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shopifyctl",
		Usage: "создание товаров в Shopify и выпуск сервисных токенов",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
		},
		Commands: []*cli.Command{
			createCommand(),
			tokenCommand(),
		},
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "создать товар из JSON-файла (формат тела POST /api/v1/shopify/products)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "путь к JSON, - для stdin", Required: true},
			&cli.StringFlag{Name: "shop", Usage: "домен магазина", EnvVars: []string{"SHOPIFY_SHOP_DOMAIN"}},
			&cli.StringFlag{Name: "token", Usage: "токен Admin API", EnvVars: []string{"SHOPIFY_ACCESS_TOKEN"}},
			&cli.StringFlag{Name: "api-version", Value: shopify.DefaultAPIVersion, EnvVars: []string{"SHOPIFY_API_VERSION"}},
			&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second},
		},
		Action: func(c *cli.Context) error {
			req, err := readRequest(c.String("file"))
			if err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				var verrs models.ValidationErrors
				if errors.As(err, &verrs) {
					if perr := printJSON(c.App.Writer, map[string]any{"errors": verrs}); perr != nil {
						return perr
					}
				}
				return cli.Exit(err.Error(), 2)
			}

			log, err := logger.NewZapLogger(c.String("log-level"), false)
			if err != nil {
				return err
			}

			client := shopify.NewClient(config.ShopifyConfig{
				APIVersion: c.String("api-version"),
				Timeout:    c.Duration("timeout"),
			}, nil, log)
			service := services.NewProductService(client, nil, log)

			product, err := service.CreateProduct(c.Context, req.ToSpec(), models.ShopCredentials{
				Domain:      c.String("shop"),
				AccessToken: c.String("token"),
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("%s: %v", services.ErrorClass(err), err), 1)
			}
			return printJSON(c.App.Writer, product)
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "выпустить RS256 токен для режима аутентификации jwt",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "private-key", Usage: "путь к PEM с закрытым ключом RSA", Required: true},
			&cli.StringFlag{Name: "subject", Usage: "имя сервиса", Required: true},
			&cli.StringSliceFlag{Name: "role", Usage: "роль, можно повторять"},
			&cli.StringFlag{Name: "issuer", Value: "shopify-product-service", EnvVars: []string{"JWT_ISSUER"}},
			&cli.DurationFlag{Name: "ttl", Value: time.Hour},
		},
		Action: func(c *cli.Context) error {
			keyPEM, err := os.ReadFile(c.String("private-key"))
			if err != nil {
				return fmt.Errorf("ошибка чтения закрытого ключа: %w", err)
			}
			manager, err := security.NewJWTManager(keyPEM, c.Duration("ttl"), c.String("issuer"))
			if err != nil {
				return err
			}
			token, err := manager.Generate(c.String("subject"), c.StringSlice("role"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, token)
			return err
		},
	}
}

func readRequest(path string) (*models.CreateProductRequest, error) {
	var r io.Reader
	if strings.TrimSpace(path) == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req models.CreateProductRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("некорректный JSON товара: %w", err)
	}
	return &req, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
