package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DDL statements, executed in order. Foreign keys require the listed order.
var ddl = []string{
	`create table if not exists regions (
		id serial primary key,
		name text not null unique
	);`,
	`create table if not exists offices (
		id serial primary key,
		name text not null,
		region_id int not null references regions(id)
	);`,
	`create table if not exists consultants (
		id serial primary key,
		name text not null,
		email text not null unique,
		password_hash text not null,
		role text not null,
		office_id int not null references offices(id),
		region_id int not null references regions(id),
		skill_profile text
	);`,
	`create table if not exists clients (
		id serial primary key,
		name text not null unique,
		sector text
	);`,
	`create table if not exists projects (
		id serial primary key,
		name text not null,
		sector text,
		client_id int not null references clients(id),
		status text not null
	);`,
	`create table if not exists consultant_projects (
		consultant_id int not null references consultants(id),
		project_id int not null references projects(id),
		primary key (consultant_id, project_id)
	);`,
	`create table if not exists workspaces (
		id serial primary key,
		name text not null,
		type text not null,
		project_id int references projects(id)
	);`,
	`create table if not exists workspace_members (
		workspace_id int not null references workspaces(id),
		consultant_id int not null references consultants(id),
		primary key (workspace_id, consultant_id)
	);`,
	`create table if not exists tags (
		id serial primary key,
		name text not null unique,
		category text
	);`,
	`create table if not exists knowledge_artefacts (
		id serial primary key,
		title text not null,
		description text,
		status text not null,
		created_on date not null,
		review_due_on date not null,
		confidentiality text not null,
		trust_level text not null,
		category text,
		owner_id int not null references consultants(id),
		project_id int references projects(id),
		workspace_id int references workspaces(id)
	);`,
	`create table if not exists artefact_tags (
		artefact_id int not null references knowledge_artefacts(id) on delete cascade,
		tag_id int not null references tags(id),
		primary key (artefact_id, tag_id)
	);`,
	`create table if not exists governance_rules (
		id serial primary key,
		name text not null,
		artefact_category text not null,
		max_review_interval_months int,
		retention_years int,
		mandatory_metadata text
	);`,
	`create table if not exists artefact_governance_rules (
		artefact_id int not null references knowledge_artefacts(id) on delete cascade,
		rule_id int not null references governance_rules(id),
		primary key (artefact_id, rule_id)
	);`,
	`create table if not exists quality_flags (
		id serial primary key,
		artefact_id int not null references knowledge_artefacts(id) on delete cascade,
		type text not null,
		severity text,
		created_on date not null,
		reference_artefact_id int references knowledge_artefacts(id)
	);`,
	`create table if not exists governance_actions (
		id serial primary key,
		artefact_id int not null references knowledge_artefacts(id),
		reviewer_id int not null references consultants(id),
		action text not null,
		comments text,
		created_on date not null
	);`,
}

// Init creates the schema and loads the demo dataset. Safe to run on every
// boot: DDL is create-if-absent and every seed insert is on-conflict-do-nothing.
func (d *DB) Init(ctx context.Context) error {
	for _, stmt := range ddl {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	if err := d.seed(ctx); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	log.Println("Database initialised / migrated.")
	return nil
}

func (d *DB) seed(ctx context.Context) error {
	seeds := []string{
		`insert into regions (id, name) values
			(1, 'UK & Ireland'),
			(2, 'EMEA')
		on conflict (id) do nothing;`,
		`insert into offices (id, name, region_id) values
			(1, 'London', 1),
			(2, 'Dublin', 1),
			(3, 'Berlin', 2)
		on conflict (id) do nothing;`,
		`insert into clients (id, name, sector) values
			(1, 'Acme Retail', 'Retail'),
			(2, 'FinBank', 'Financial Services')
		on conflict (id) do nothing;`,
		`insert into projects (id, name, sector, client_id, status) values
			(1, 'Acme E-commerce Modernisation', 'Retail', 1, 'Active'),
			(2, 'FinBank Cloud Migration', 'Financial Services', 2, 'Active')
		on conflict (id) do nothing;`,
		`insert into workspaces (id, name, type, project_id) values
			(1, 'Acme E-comm Squad', 'Project', 1),
			(2, 'Cloud Guild', 'Community', null)
		on conflict (id) do nothing;`,
		`insert into tags (id, name, category) values
			(1, 'Cloud', 'Tech'),
			(2, 'DevOps', 'Practice'),
			(3, 'FinTech', 'Industry')
		on conflict (id) do nothing;`,
		`insert into governance_rules (id, name, artefact_category, max_review_interval_months, retention_years, mandatory_metadata) values
			(1, 'Cloud Playbook Standard', 'Cloud', 12, 5, 'title,description,tags,confidentiality,project'),
			(2, 'Client Case Study Standard', 'CaseStudy', 24, 7, 'title,description,client,sector,confidentiality'),
			(3, 'Internal How-To', 'HowTo', 18, 3, 'title,description,tags')
		on conflict (id) do nothing;`,
	}

	for _, stmt := range seeds {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	if err := d.seedConsultants(ctx); err != nil {
		return err
	}

	return d.seedArtefacts(ctx)
}

type seedConsultant struct {
	id       int
	name     string
	email    string
	password string
	role     string
	officeID int
	regionID int
	skills   string
}

func (d *DB) seedConsultants(ctx context.Context) error {
	demo := []seedConsultant{
		{1, "Alice Wong", "alice.wong@velion.com", "password1", "Consultant", 1, 1, "Cloud, DevOps"},
		{2, "Ben Kumar", "ben.kumar@velion.com", "password2", "KnowledgeChampion", 1, 1, "Data, Analytics"},
		{3, "Carla Ruiz", "carla.ruiz@velion.com", "password3", "GovCouncil", 3, 2, "Governance"},
		{4, "Darren Lee", "darren.lee@velion.com", "password4", "RegionalManager", 2, 1, "EMEA North"},
	}

	const q = `
insert into consultants (id, name, email, password_hash, role, office_id, region_id, skill_profile)
values ($1, $2, $3, $4, $5, $6, $7, $8)
on conflict (id) do nothing;
`
	for _, c := range demo {
		// Skip the bcrypt work when the row already exists.
		var exists bool
		if err := d.Pool.QueryRow(ctx, `select exists(select 1 from consultants where id = $1)`, c.id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(c.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := d.Pool.Exec(ctx, q, c.id, c.name, c.email, string(hash), c.role, c.officeID, c.regionID, c.skills); err != nil {
			return err
		}
	}
	return nil
}

// seedArtefacts loads one trusted artefact so the UI isn't empty, with its
// tags, rule binding and the audit record behind its trusted state.
func (d *DB) seedArtefacts(ctx context.Context) error {
	now := time.Now()
	reviewDue := now.AddDate(1, 0, 0)

	stmts := []struct {
		q    string
		args []any
	}{
		{`insert into knowledge_artefacts
			(id, title, description, status, created_on, review_due_on, confidentiality,
			 trust_level, category, owner_id, project_id, workspace_id)
		  values
			(1, 'Cloud Migration Playbook', 'Guidance for cloud migration', 'Trusted',
			 $1, $2, 'ClientConfidential', 'Trusted', 'Cloud', 1, 2, 1)
		  on conflict (id) do nothing;`, []any{now, reviewDue}},
		{`insert into artefact_tags (artefact_id, tag_id) values (1, 1), (1, 2)
		  on conflict do nothing;`, nil},
		{`insert into artefact_governance_rules (artefact_id, rule_id) values (1, 1)
		  on conflict do nothing;`, nil},
		{`insert into governance_actions (id, artefact_id, reviewer_id, action, comments, created_on)
		  values (1, 1, 2, 'approve', 'Initial seed trusted content', $1)
		  on conflict (id) do nothing;`, []any{now}},
		{`insert into workspace_members (workspace_id, consultant_id)
		  values (1, 1), (1, 2), (2, 1), (2, 3)
		  on conflict do nothing;`, nil},
		{`insert into consultant_projects (consultant_id, project_id)
		  values (1, 1), (1, 2), (2, 1)
		  on conflict do nothing;`, nil},
	}

	for _, s := range stmts {
		if _, err := d.Pool.Exec(ctx, s.q, s.args...); err != nil {
			return err
		}
	}

	// Seeded rows use fixed ids; keep the sequences ahead of them.
	fixes := []string{
		`select setval(pg_get_serial_sequence('regions','id'), greatest((select max(id) from regions), 1));`,
		`select setval(pg_get_serial_sequence('offices','id'), greatest((select max(id) from offices), 1));`,
		`select setval(pg_get_serial_sequence('consultants','id'), greatest((select max(id) from consultants), 1));`,
		`select setval(pg_get_serial_sequence('clients','id'), greatest((select max(id) from clients), 1));`,
		`select setval(pg_get_serial_sequence('projects','id'), greatest((select max(id) from projects), 1));`,
		`select setval(pg_get_serial_sequence('workspaces','id'), greatest((select max(id) from workspaces), 1));`,
		`select setval(pg_get_serial_sequence('tags','id'), greatest((select max(id) from tags), 1));`,
		`select setval(pg_get_serial_sequence('governance_rules','id'), greatest((select max(id) from governance_rules), 1));`,
		`select setval(pg_get_serial_sequence('knowledge_artefacts','id'), greatest((select max(id) from knowledge_artefacts), 1));`,
		`select setval(pg_get_serial_sequence('governance_actions','id'), greatest((select max(id) from governance_actions), 1));`,
	}
	for _, f := range fixes {
		if _, err := d.Pool.Exec(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
