// seed carga lotes recibidos desde un CSV en el backend configurado (DB_DRIVER).
// Cada lote queda con su movimiento receive en el libro.
//
// Uso: go run ./cmd/seed lotes.csv [latin1]
// Columnas obligatorias: company_id, item_id, lot_code, quantity, location, received_date (AAAA-MM-DD).
// Opcionales: sku, name, unit_of_measure, expiry_date, cost_per_unit, supplier_id,
// supplier_lot_number, compliance_package_uid.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/lotes-api/internal/infrastructure/storage"
	"github.com/jhoicas/lotes-api/pkg/config"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed <archivo.csv> [charset]")
		os.Exit(2)
	}
	charset := ""
	if len(os.Args) > 2 {
		charset = os.Args[2]
	}

	dbCfg, err := config.LoadDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: "development", Level: "info", Service: "seed"})

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	records, err := parseLots(f, charset)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, dbCfg)
	if err != nil {
		log.Fatal().Err(err).Str("db_driver", dbCfg.Driver).Msg("abrir almacenamiento")
	}
	defer func() { _ = backend.Close() }()

	sum, err := loadLots(ctx, backend.Runner, records, "seed")
	if err != nil {
		log.Error().Err(err).Int("lots", sum.LotsCreated).Msg("carga interrumpida")
		return
	}
	log.Info().
		Int("items", sum.ItemsCreated).
		Int("lots", sum.LotsCreated).
		Str("db_driver", backend.Driver).
		Msg("carga de lotes completada")
}
