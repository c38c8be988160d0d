package sqlinline

const QEnsureGenerationsTable = `--sql 3f6b1c2e-8d4a-4e71-9a0b-5c2d7e8f9a13
create table if not exists generations (
  id          uuid primary key,
  kind        text not null,
  prompt      text not null default '',
  style       text not null default '',
  ratio       text not null default '',
  outcome     text not null,
  image       text not null default '',
  error       text not null default '',
  created_at  timestamptz not null default now()
);
create index if not exists generations_created_at_idx on generations (created_at desc);
`

const QInsertGeneration = `--sql a4c9e2d7-1b3f-4f58-8e6a-0d2c4b7e9f21
insert into generations(id, kind, prompt, style, ratio, outcome, image, error, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::timestamptz);
`

const QListRecentGenerations = `--sql 7e2d5a91-c3b8-4d06-a1f4-9b8c6e3d2a75
select id::text, kind, prompt, style, ratio, outcome, image, error, created_at
from generations
order by created_at desc
limit $1::int;
`
