package registry

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"contract-kit/contract"
	"contract-kit/log"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Deployment 一个合约在某个网络上的部署记录
type Deployment struct {
	Id        int       `json:"-" gorm:"column:id;primaryKey;autoIncrement"`
	Network   string    `json:"network" gorm:"column:network;size:64;uniqueIndex:idx_network_name"`
	Name      string    `json:"name" gorm:"column:name;size:191;uniqueIndex:idx_network_name"`
	Address   string    `json:"address" gorm:"column:address;size:42"`
	Abi       string    `json:"abi" gorm:"column:abi;type:longtext"`
	TxHash    string    `json:"tx_hash" gorm:"column:tx_hash;size:66"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (d *Deployment) TableName() string {
	return "deployments"
}

// ContractName strips the source file from a qualified artifact name
// ("Example.sol:Example" -> "Example").
func ContractName(artifactName string) string {
	if i := strings.LastIndex(artifactName, ":"); i >= 0 {
		return artifactName[i+1:]
	}
	return artifactName
}

// FromInstances pairs every deployed instance with the ABI text of its
// artifact.
func FromInstances(network string, artifacts map[string]contract.Artifact, instances map[string]*contract.Instance) []Deployment {
	names := make([]string, 0, len(instances))
	for name := range instances {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Deployment, 0, len(names))
	for _, name := range names {
		inst := instances[name]
		out = append(out, Deployment{
			Network: network,
			Name:    ContractName(name),
			Address: inst.Address.Hex(),
			Abi:     artifacts[name].Interface,
			TxHash:  inst.TxHash.Hex(),
		})
	}
	return out
}

// BuildSummary folds deployment records into a summary document. The ABI
// of the last record of a name wins.
func BuildSummary(records []Deployment) contract.Summary {
	summary := make(contract.Summary)
	for _, r := range records {
		entry, ok := summary[r.Name]
		if !ok {
			entry = contract.SummaryEntry{Addresses: make(map[string]string)}
		}
		if json.Valid([]byte(r.Abi)) {
			entry.ABI = json.RawMessage(r.Abi)
		}
		entry.Addresses[r.Network] = r.Address
		summary[r.Name] = entry
	}
	return summary
}

// Registry persists deployments with gorm.
type Registry struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// InitTable 建表
func (r *Registry) InitTable() error {
	return r.db.AutoMigrate(&Deployment{})
}

// Record 保存部署记录，同一网络同名合约覆盖旧地址
func (r *Registry) Record(ctx context.Context, deployments []Deployment) error {
	if len(deployments) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "network"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"address", "abi", "tx_hash", "updated_at"}),
	}).Create(&deployments).Error
	if err != nil {
		log.Logger.Error("record deployments", zap.Error(err))
	}
	return err
}

// Summary builds the summary document of every recorded deployment.
func (r *Registry) Summary(ctx context.Context) (contract.Summary, error) {
	var records []Deployment
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return BuildSummary(records), nil
}
