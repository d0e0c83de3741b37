package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin é um administrador da plataforma (Control Plane).
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Nunca expor
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Professor é o dono de um tenant: todos os produtos, planos e alunos dele
// formam uma partição isolada de dados.
type Professor struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Bio          *string   `json:"bio,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Ativo        bool      `json:"ativo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Aluno pertence a exatamente um professor (o seletor de tenant no login).
type Aluno struct {
	ID           uuid.UUID `json:"id"`
	ProfessorID  uuid.UUID `json:"professor_id"`
	Nome         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Produto é um curso de um professor.
type Produto struct {
	ID          uuid.UUID `json:"id"`
	ProfessorID uuid.UUID `json:"professor_id"`
	Titulo      string    `json:"titulo"`
	Descricao   *string   `json:"descricao,omitempty"`
	CoverURL    *string   `json:"cover_url,omitempty"`
	Ativo       bool      `json:"ativo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Modulo é uma seção ordenada dentro de um produto.
type Modulo struct {
	ID        uuid.UUID `json:"id"`
	ProdutoID uuid.UUID `json:"produto_id"`
	Titulo    string    `json:"titulo"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Aula é uma lição ordenada dentro de um módulo.
type Aula struct {
	ID        uuid.UUID `json:"id"`
	ModuloID  uuid.UUID `json:"modulo_id"`
	Titulo    string    `json:"titulo"`
	Descricao *string   `json:"descricao,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConteudoStatus acompanha o processamento assíncrono de arquivos de imagem.
type ConteudoStatus string

const (
	ConteudoPending    ConteudoStatus = "pending"
	ConteudoProcessing ConteudoStatus = "processing"
	ConteudoReady      ConteudoStatus = "ready"
	ConteudoFailed     ConteudoStatus = "failed"
)

// Conteudo é um arquivo anexado a uma aula, armazenado no object storage.
type Conteudo struct {
	ID               uuid.UUID      `json:"id"`
	AulaID           uuid.UUID      `json:"aula_id"`
	Filename         string         `json:"filename"`
	OriginalFilename string         `json:"original_filename"`
	MimeType         string         `json:"mime_type"`
	FileSize         int64          `json:"file_size"`
	StoragePath      string         `json:"-"`
	PublicURL        string         `json:"public_url"`
	ThumbURL         *string        `json:"thumb_url,omitempty"`
	Status           ConteudoStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Plano agrupa produtos de um professor sob um preço de assinatura.
type Plano struct {
	ID            uuid.UUID `json:"id"`
	ProfessorID   uuid.UUID `json:"professor_id"`
	Nome          string    `json:"nome"`
	Descricao     *string   `json:"descricao,omitempty"`
	PrecoCentavos int64     `json:"preco_centavos"`
	Ativo         bool      `json:"ativo"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InscricaoStatus é o estado de uma matrícula.
type InscricaoStatus string

const (
	InscricaoActive    InscricaoStatus = "active"
	InscricaoCancelled InscricaoStatus = "cancelled"
)

// Inscricao matricula um aluno em um plano.
type Inscricao struct {
	ID        uuid.UUID       `json:"id"`
	AlunoID   uuid.UUID       `json:"aluno_id"`
	PlanoID   uuid.UUID       `json:"plano_id"`
	Status    InscricaoStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
