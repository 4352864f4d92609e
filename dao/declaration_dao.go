package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/prevet-io/prevet/catalog"
	logger "github.com/prevet-io/prevet/logging"
)

// Neo4j labels and relationships for the declaration graph.
const (
	LabelSecuredType       = "SecuredType"
	LabelPolicyDeclaration = "PolicyDeclaration"
	RelDeclares            = "DECLARES"
)

// DeclarationDAO reads and writes policy declarations in the Neo4j
// declaration graph: (SecuredType)-[:DECLARES]->(PolicyDeclaration).
type DeclarationDAO struct {
	Driver neo4j.Driver
}

func NewDeclarationDAO(driver neo4j.Driver) *DeclarationDAO {
	return &DeclarationDAO{Driver: driver}
}

// FetchDeclarations retrieves every policy declaration in the graph.
func (dao *DeclarationDAO) FetchDeclarations(ctx context.Context) ([]catalog.Declaration, error) {
	start := time.Now()
	logger.Info("Retrieving policy declarations from Neo4j")

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (t:` + LabelSecuredType + `)-[:` + RelDeclares + `]->(d:` + LabelPolicyDeclaration + `)
        RETURN t.id AS type, d.method AS method, d.expression AS expression
        ORDER BY type, method
        `

		result, err := tx.Run(query, nil)
		if err != nil {
			return nil, err
		}

		var decls []catalog.Declaration
		for result.Next() {
			record := result.Record()
			decl, err := mapRecordToDeclaration(record)
			if err != nil {
				return nil, err
			}
			decls = append(decls, decl)
		}

		return decls, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to retrieve policy declarations",
			zap.Error(err),
			zap.Duration("duration", duration))
		return nil, err
	}

	decls := result.([]catalog.Declaration)
	logger.Info("Retrieved policy declarations successfully",
		zap.Int("declaration_count", len(decls)),
		zap.Duration("duration", duration))

	return decls, nil
}

// UpsertDeclaration stores a declaration, creating the secured type node on
// demand. Method-level declarations are keyed by (type, method); type-level
// ones use an empty method property.
func (dao *DeclarationDAO) UpsertDeclaration(ctx context.Context, decl catalog.Declaration) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (t:` + LabelSecuredType + ` {id: $type})
        MERGE (t)-[:` + RelDeclares + `]->(d:` + LabelPolicyDeclaration + ` {method: $method})
        SET d.expression = $expression
        `

		params := map[string]interface{}{
			"type":       decl.Type,
			"method":     decl.Method,
			"expression": decl.Expression,
		}

		return tx.Run(query, params)
	})

	if err != nil {
		logger.Error("Failed to upsert policy declaration",
			zap.Error(err),
			zap.String("type", decl.Type),
			zap.String("method", decl.Method))
		return err
	}

	logger.Info("Upserted policy declaration",
		zap.String("type", decl.Type),
		zap.String("method", decl.Method))
	return nil
}

// Helper function to map a Neo4j record to a Declaration
func mapRecordToDeclaration(record *neo4j.Record) (catalog.Declaration, error) {
	decl := catalog.Declaration{}

	typeID, ok := record.Get("type")
	if !ok {
		return decl, fmt.Errorf("declaration record is missing type")
	}
	if s, ok := typeID.(string); ok {
		decl.Type = s
	} else {
		return decl, fmt.Errorf("failed to assert type for declaration type: %v", typeID)
	}

	if method, ok := record.Get("method"); ok && method != nil {
		if s, ok := method.(string); ok {
			decl.Method = s
		}
	}

	expression, ok := record.Get("expression")
	if !ok {
		return decl, fmt.Errorf("declaration record is missing expression")
	}
	if s, ok := expression.(string); ok {
		decl.Expression = s
	} else {
		return decl, fmt.Errorf("failed to assert type for declaration expression: %v", expression)
	}

	return decl, nil
}
